package handlers

import (
	"context"
	"fmt"
)

// Plan prints the resources an apply would evaluate, in creation order.
// It never calls the API; the plan is derived from the declaration alone.
func Plan(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	st, err := buildStack(cfg)
	if err != nil {
		return err
	}

	order, err := st.CreationOrder()
	if err != nil {
		return err
	}

	printTitle(fmt.Sprintf("Stack %s (%s)", cfg.Name, cfg.Region))
	fmt.Println()
	for i, r := range order {
		fmt.Printf("%3d. %-26s %s\n", i+1, r.Kind, r.Name)
	}
	fmt.Println()
	fmt.Printf("%d resources will be ensured on apply.\n", len(order))
	return nil
}
