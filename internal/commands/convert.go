package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fintrack-dev/fintrack/internal/convert"
	"github.com/fintrack-dev/fintrack/internal/model"
)

func newConvertCommand() *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert between installment plans and recurring templates",
	}
	convertCmd.AddCommand(newPlanToTemplateCommand())
	convertCmd.AddCommand(newTemplateToPlanCommand())
	return convertCmd
}

func newPlanToTemplateCommand() *cobra.Command {
	var dir string
	var apply bool

	cmd := &cobra.Command{
		Use:   "plan-to-template <plan-id>",
		Short: "Convert a fixed-installment plan to an open-ended template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.Close()

			plan, ok := e.st.Plan(args[0])
			if !ok {
				return fmt.Errorf("plan %s not found", args[0])
			}

			res := convert.PlanToTemplate(plan)
			for _, note := range res.Notes {
				fmt.Printf("note: %s\n", note)
			}
			if !apply {
				return printPreview(res.Template)
			}

			ctx := cmd.Context()
			tpl, _, err := e.st.CreateTemplate(ctx, res.Template)
			if err != nil {
				return fmt.Errorf("creating template: %w", err)
			}
			// Re-point generated transactions to the new template, then
			// retire the plan.
			for _, tx := range e.st.Transactions() {
				if tx.EMIID != plan.ID {
					continue
				}
				err := e.st.UpdateTransaction(ctx, tx.ID, func(t *model.Transaction) {
					t.EMIID = ""
					t.RecurringTemplateID = tpl.ID
				})
				if err != nil {
					return fmt.Errorf("re-pointing transaction %s: %w", tx.ID, err)
				}
			}
			if err := e.st.DeletePlan(ctx, plan.ID); err != nil {
				return fmt.Errorf("deleting plan: %w", err)
			}
			fmt.Printf("Converted plan %s to template %s\n", plan.ID, tpl.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().BoolVar(&apply, "apply", false, "perform the conversion instead of previewing it")
	return cmd
}

func newTemplateToPlanCommand() *cobra.Command {
	var dir string
	var apply bool

	cmd := &cobra.Command{
		Use:   "template-to-plan <template-id>",
		Short: "Convert an open-ended template to a fixed-installment plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer e.Close()

			tpl, ok := e.st.Template(args[0])
			if !ok {
				return fmt.Errorf("template %s not found", args[0])
			}

			res, err := convert.TemplateToPlan(tpl)
			if err != nil {
				return err
			}
			for _, note := range res.Notes {
				fmt.Printf("note: %s\n", note)
			}
			if !apply {
				return printPreview(res.Plan)
			}

			ctx := cmd.Context()
			plan, _, err := e.st.CreatePlan(ctx, res.Plan)
			if err != nil {
				return fmt.Errorf("creating plan: %w", err)
			}
			for _, tx := range e.st.Transactions() {
				if tx.RecurringTemplateID != tpl.ID {
					continue
				}
				err := e.st.UpdateTransaction(ctx, tx.ID, func(t *model.Transaction) {
					t.RecurringTemplateID = ""
					t.EMIID = plan.ID
				})
				if err != nil {
					return fmt.Errorf("re-pointing transaction %s: %w", tx.ID, err)
				}
			}
			if err := e.st.DeleteTemplate(ctx, tpl.ID); err != nil {
				return fmt.Errorf("deleting template: %w", err)
			}
			fmt.Printf("Converted template %s to plan %s\n", tpl.ID, plan.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().BoolVar(&apply, "apply", false, "perform the conversion instead of previewing it")
	return cmd
}

func printPreview(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preview: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
