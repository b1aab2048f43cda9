// Package userdata renders the first-boot script for the public web
// instance.
package userdata

import (
	"bytes"
	"fmt"
	"text/template"
)

// webServerScript installs the web server, writes a landing page and
// enables the service so it survives reboots.
const webServerScript = `#!/bin/bash
set -euo pipefail
dnf install -y httpd
cat > /var/www/html/index.html <<'EOF'
<html>
<head><title>{{.Stack}}</title></head>
<body>
<h1>{{.Stack}}</h1>
<p>Served from the public subnet.</p>
</body>
</html>
EOF
systemctl enable --now httpd
`

var webServerTemplate = template.Must(template.New("webserver").Parse(webServerScript))

// Params feed the script template.
type Params struct {
	Stack string
}

// WebServer renders the first-boot script for the given stack name.
func WebServer(stackName string) (string, error) {
	var buf bytes.Buffer
	if err := webServerTemplate.Execute(&buf, Params{Stack: stackName}); err != nil {
		return "", fmt.Errorf("rendering first-boot script: %w", err)
	}
	return buf.String(), nil
}
