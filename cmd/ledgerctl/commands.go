package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/store"
)

// refresh reloads today. Read failures are shown but never fail the command,
// since the store falls back to a default snapshot.
func (a *app) refresh(cmd *cobra.Command) store.Snapshot {
	if err := a.store.RefetchAll(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: ledger unreachable, showing defaults (%v)\n", err)
	}
	return a.store.Snapshot()
}

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show today's totals and entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printSnapshot(cmd.OutOrStdout(), a.refresh(cmd))
			return nil
		},
	}
}

func (a *app) logCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log NAME CALORIES",
		Short: "Log a calorie-only entry for today",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kcal, err := parseCalories(args[1])
			if err != nil {
				return err
			}
			if err := a.store.AddLog(cmd.Context(), args[0], kcal); err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), a.store.Snapshot())
			return nil
		},
	}
}

func (a *app) editCmd() *cobra.Command {
	var mealType string
	cmd := &cobra.Command{
		Use:   "edit LOG_ID CALORIES",
		Short: "Change an entry's calories; macros scale with it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			kcal, err := parseCalories(args[1])
			if err != nil {
				return err
			}
			var mt ledger.MealType
			if mealType != "" {
				parsed, ok := ledger.ParseMealType(mealType)
				if !ok {
					return fmt.Errorf("unknown meal type %q", mealType)
				}
				mt = parsed
			}
			// load today so the stored macros are known
			a.refresh(cmd)
			if err := a.store.UpdateLog(cmd.Context(), id, mt, kcal, nil); err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), a.store.Snapshot())
			return nil
		},
	}
	cmd.Flags().StringVarP(&mealType, "meal-type", "m", "", "new meal type (breakfast, lunch, dinner, snack)")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete LOG_ID",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeleteLog(cmd.Context(), id); err != nil {
				if ledger.IsNotFound(err) {
					return fmt.Errorf("entry %d does not exist", id)
				}
				return err
			}
			printSnapshot(cmd.OutOrStdout(), a.store.Snapshot())
			return nil
		},
	}
}

func (a *app) eatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eat TEMPLATE_ID",
		Short: "Log a meal template as eaten now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.store.LogMeal(cmd.Context(), id); err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), a.store.Snapshot())
			return nil
		},
	}
}

func (a *app) goalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goal CALORIES",
		Short: "Set the daily calorie goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kcal, err := parseCalories(args[0])
			if err != nil {
				return err
			}
			if err := a.store.SetGoal(cmd.Context(), kcal); err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), a.store.Snapshot())
			return nil
		},
	}
}

func (a *app) plansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List meal templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printTemplates(cmd.OutOrStdout(), a.refresh(cmd))
			return nil
		},
	}

	var days int
	gen := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new meal plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.client.GenerateMealPlan(cmd.Context(), ledger.MealPlanRequest{NumDays: days})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d templates over %d days (avg %d kcal/day)\n",
				len(out.Templates), out.TotalDays, out.AverageCaloriesPerDay)
			printTemplates(cmd.OutOrStdout(), a.refresh(cmd))
			return nil
		},
	}
	gen.Flags().IntVar(&days, "days", 0, "number of days (1-14, default 7)")

	var (
		name, mealType, desc string
		kcal                 int
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Author a template by hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--name is required")
			}
			t, err := a.client.CreateTemplate(cmd.Context(), ledger.MealTemplate{
				Name:        name,
				MealType:    ledger.MealType(mealType),
				Calories:    kcal,
				Description: desc,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created template %d\n", t.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "template name")
	add.Flags().StringVarP(&mealType, "meal-type", "m", "", "meal type (default snack)")
	add.Flags().IntVar(&kcal, "calories", 0, "calories")
	add.Flags().StringVar(&desc, "description", "", "description")

	cmd.AddCommand(gen, add)
	return cmd
}

func (a *app) dayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day DATE",
		Short: "Show entries and totals of any day (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(args[0])
			if err != nil {
				return err
			}
			summary := a.store.GetNutritionSummaryForDate(cmd.Context(), d)
			meals := a.store.GetMealsForDate(cmd.Context(), d)
			printSummary(cmd.OutOrStdout(), &summary)
			printMeals(cmd.OutOrStdout(), meals)
			return nil
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Per-day totals over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			end, err := parseDate(to)
			if err != nil {
				return err
			}
			start := end.AddDate(0, 0, -6)
			if from != "" {
				if start, err = parseDate(from); err != nil {
					return err
				}
			}
			rows, err := a.client.FetchHistory(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (default: a week before --to)")
	cmd.Flags().StringVar(&to, "to", "", "last day (default: today)")
	return cmd
}

func (a *app) noteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Journal notes keyed by date",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:  "get DATE",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := parseDate(args[0])
				if err != nil {
					return err
				}
				n, err := a.client.GetNote(cmd.Context(), d)
				if err != nil {
					return err
				}
				if n == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "(no note)")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), n.Text)
				return nil
			},
		},
		&cobra.Command{
			Use:  "save DATE TEXT",
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := parseDate(args[0])
				if err != nil {
					return err
				}
				_, err = a.client.SaveNote(cmd.Context(), d, args[1])
				return err
			},
		},
		&cobra.Command{
			Use:  "delete DATE",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := parseDate(args[0])
				if err != nil {
					return err
				}
				return a.client.DeleteNote(cmd.Context(), d)
			},
		},
	)
	return cmd
}

// watchCmd redraws whenever the ledger reports a change. It never polls.
func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow today's ledger live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cancel := a.store.Subscribe(func(s store.Snapshot) {
				if s.IsLoading {
					return
				}
				fmt.Fprintln(out, "----")
				printSnapshot(out, s)
			})
			defer cancel()

			a.refresh(cmd)
			err := a.client.WatchChanges(cmd.Context(), func(ev ledger.ChangeEvent) {
				if ev.Kind == "alert.created" {
					fmt.Fprintln(out, "goal reached!")
				}
				_ = a.store.RefetchAll(cmd.Context())
			})
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}
}
