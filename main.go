package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apiapp "promptforge/internal/api/app"
	"promptforge/internal/config"
	"promptforge/internal/domain"
)

func main() {
	var cfgPath string
	var verbose bool

	var app *App
	var logger *zap.Logger

	rootCmd := &cobra.Command{
		Use:           "promptforge",
		Short:         "Prompt template workshop: revisions, diffs, LLM transforms, staged improvement",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if verbose {
				logger, err = zap.NewDevelopment()
			} else {
				logger, err = zap.NewProduction()
			}
			if err != nil {
				return err
			}
			app, err = NewApp(cfg, logger)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logger != nil {
				_ = logger.Sync()
			}
			if app != nil {
				return app.Close()
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "promptforge.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging")

	rootCmd.AddCommand(
		promptCmd(&app),
		diffCmd(&app),
		endpointCmd(&app),
		translateCmd(&app),
		improveCmd(&app),
		libraryCmd(&app),
		settingsCmd(&app),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func promptCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{Use: "prompt", Short: "Manage prompts and revisions"}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			p, err := (*app).Prompts.Create(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("created prompt %d: %s\n", p.ID, p.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List prompts",
		RunE: func(c *cobra.Command, args []string) error {
			prompts, err := (*app).Prompts.List()
			if err != nil {
				return err
			}
			for _, p := range prompts {
				fmt.Printf("%d\t%s\n", p.ID, p.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prompt and its revisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			_, err = (*app).Prompts.Delete(id)
			return err
		},
	})

	var description, instruction, body, bodyFile, note string
	save := &cobra.Command{
		Use:   "save <prompt-id>",
		Short: "Append a new revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			if bodyFile != "" {
				data, err := os.ReadFile(bodyFile)
				if err != nil {
					return err
				}
				body = string(data)
			}
			rev, err := (*app).Prompts.SaveRevision(apiapp.SaveRevisionRequest{
				PromptID:    id,
				Description: description,
				Instruction: instruction,
				Body:        body,
				Note:        note,
			})
			if err != nil {
				return err
			}
			fmt.Printf("saved revision %d (number %d)\n", rev.ID, rev.Number)
			return nil
		},
	}
	save.Flags().StringVar(&description, "description", "", "revision description")
	save.Flags().StringVar(&instruction, "instruction", "", "revision instruction")
	save.Flags().StringVar(&body, "body", "", "template body")
	save.Flags().StringVar(&bodyFile, "body-file", "", "read template body from file")
	save.Flags().StringVar(&note, "note", "", "revision note")
	cmd.AddCommand(save)

	cmd.AddCommand(&cobra.Command{
		Use:   "revisions <prompt-id>",
		Short: "List a prompt's revisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			revs, err := (*app).Prompts.Revisions(id)
			if err != nil {
				return err
			}
			for _, r := range revs {
				fmt.Printf("%d\t#%d\t%s\t%s\n", r.ID, r.Number, r.CreatedAt.Format("2006-01-02 15:04"), r.Note)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "vars <revision-id>",
		Short: "List a revision's placeholders",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			names, err := (*app).Prompts.Variables(id)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	})

	var sets []string
	preview := &cobra.Command{
		Use:   "preview <revision-id>",
		Short: "Render a revision with placeholder values",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			values := map[string]string{}
			for _, kv := range sets {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("bad --set %q, want key=value", kv)
				}
				values[k] = v
			}
			out, err := (*app).Prompts.Preview(apiapp.PreviewRequest{RevisionID: id, Values: values})
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	preview.Flags().StringArrayVar(&sets, "set", nil, "placeholder value, key=value (repeatable)")
	cmd.AddCommand(preview)

	return cmd
}

func diffCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old-revision-id> <new-revision-id>",
		Short: "Diff two revisions field by field",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			oldID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			newID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return err
			}
			fields, err := (*app).Compare.Compare(oldID, newID)
			if err != nil {
				return err
			}
			for _, f := range fields {
				fmt.Printf("== %s ==\n", f.Field)
				for _, s := range f.Left {
					fmt.Printf("  left  %-9s [%d:%d)\n", s.Kind, s.Start, s.End)
				}
				for _, s := range f.Right {
					fmt.Printf("  right %-9s [%d:%d)\n", s.Kind, s.Start, s.End)
				}
			}
			return nil
		},
	}
}

func endpointCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{Use: "endpoint", Short: "Manage LLM endpoints"}

	var epType, name, apiKey, baseURL, model string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register an endpoint",
		RunE: func(c *cobra.Command, args []string) error {
			e, err := (*app).Endpoints.Create(domain.Endpoint{
				Type:    epType,
				Name:    name,
				APIKey:  apiKey,
				BaseURL: baseURL,
				Model:   model,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created endpoint %d: %s (%s)\n", e.ID, e.Name, e.Type)
			return nil
		},
	}
	add.Flags().StringVar(&epType, "type", "", "endpoint type (openrouter or ollama)")
	add.Flags().StringVar(&name, "name", "", "display name")
	add.Flags().StringVar(&apiKey, "api-key", "", "API key")
	add.Flags().StringVar(&baseURL, "base-url", "", "base URL override")
	add.Flags().StringVar(&model, "model", "", "default model")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List endpoints",
		RunE: func(c *cobra.Command, args []string) error {
			eps, err := (*app).Endpoints.List()
			if err != nil {
				return err
			}
			for _, e := range eps {
				fmt.Printf("%d\t%s\t%s\t%s\n", e.ID, e.Type, e.Name, e.Model)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "models <id>",
		Short: "List the models an endpoint serves",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			models, err := (*app).Endpoints.ListModels(id)
			if err != nil {
				return err
			}
			for _, m := range models {
				fmt.Printf("%s\t%s\n", m.Name, m.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "test <id>",
		Short: "Check an endpoint's connectivity",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			res, err := (*app).Endpoints.Test(id)
			if err != nil {
				return err
			}
			if res.Ok {
				fmt.Println("ok")
				return nil
			}
			fmt.Printf("failed (%s): %s\n", res.Category, res.Error)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Test connectivity of every endpoint",
		RunE: func(c *cobra.Command, args []string) error {
			results, err := (*app).HealthCheck(context.Background())
			if err != nil {
				return err
			}
			for name, res := range results {
				if res == nil {
					fmt.Printf("%s\tok\n", name)
				} else {
					fmt.Printf("%s\tfailed: %v\n", name, res)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			_, err = (*app).Endpoints.Delete(id)
			return err
		},
	})

	return cmd
}

func translateCmd(app **App) *cobra.Command {
	var endpointID int64
	var model, lang string
	var fields []string
	var bypass bool

	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Transform text through an endpoint with placeholder protection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if len(fields) > 0 {
				res, err := (*app).Translate.TranslateFields(apiapp.TranslateFieldsRequest{
					EndpointID:  endpointID,
					Fields:      fields,
					TargetLang:  lang,
					Model:       model,
					BypassCache: bypass,
				})
				if err != nil {
					return err
				}
				for _, f := range res.Fields {
					fmt.Println(f)
				}
				printWarnings(c, res.Warnings, res.FromCache)
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("provide text or at least one --field")
			}
			res, err := (*app).Translate.Translate(apiapp.TranslateRequest{
				EndpointID:  endpointID,
				Text:        args[0],
				TargetLang:  lang,
				Model:       model,
				BypassCache: bypass,
			})
			if err != nil {
				return err
			}
			fmt.Println(res.Text)
			printWarnings(c, res.Warnings, res.FromCache)
			return nil
		},
	}
	cmd.Flags().Int64Var(&endpointID, "endpoint", 0, "endpoint id (default: active setting)")
	cmd.Flags().StringVar(&model, "model", "", "model id (default: active setting)")
	cmd.Flags().StringVar(&lang, "lang", "", "target language")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "field to transform in one combined call (repeatable)")
	cmd.Flags().BoolVar(&bypass, "bypass-cache", false, "skip the transform cache")
	return cmd
}

func printWarnings(c *cobra.Command, warnings []string, fromCache bool) {
	if fromCache {
		fmt.Fprintln(c.ErrOrStderr(), "(from cache)")
	}
	for _, w := range warnings {
		fmt.Fprintln(c.ErrOrStderr(), "warning:", w)
	}
}

func improveCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{Use: "improve", Short: "Improve a prompt through the staged pipeline"}

	var endpointID int64
	var model string
	run := &cobra.Command{
		Use:   "run <revision-id>",
		Short: "Run all stages over a revision's body",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			snap, err := (*app).Improve.Start(apiapp.StartImproveRequest{
				RevisionID: id,
				EndpointID: endpointID,
				Model:      model,
			})
			if err != nil {
				return err
			}
			ctx := context.Background()
			for _, stage := range domain.StageOrder {
				res, err := (*app).Runner.RunStageSync(ctx, snap.ID, stage)
				if err != nil {
					return fmt.Errorf("stage %s: %w", stage, err)
				}
				cached := ""
				if res.FromCache {
					cached = " (cached)"
				}
				fmt.Fprintf(c.ErrOrStderr(), "stage %s done%s\n", stage, cached)
			}
			final, err := (*app).Improve.Final(snap.ID)
			if err != nil {
				return err
			}
			fmt.Println(final.Template)
			for _, w := range final.Warnings {
				fmt.Fprintln(c.ErrOrStderr(), "warning:", w)
			}
			return nil
		},
	}
	run.Flags().Int64Var(&endpointID, "endpoint", 0, "endpoint id (default: active setting)")
	run.Flags().StringVar(&model, "model", "", "model id (default: active setting)")
	cmd.AddCommand(run)

	return cmd
}

func libraryCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{Use: "library", Short: "Import and export the prompt library"}

	var format string
	export := &cobra.Command{
		Use:   "export <path>",
		Short: "Export the library (latest revisions)",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return (*app).Library.Export(context.Background(), format, args[0])
		},
	}
	export.Flags().StringVar(&format, "format", "json", "export format")
	cmd.AddCommand(export)

	var impFormat string
	imp := &cobra.Command{
		Use:   "import <path>",
		Short: "Import a library file",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			n, err := (*app).Library.Import(context.Background(), impFormat, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("imported %d prompts\n", n)
			return nil
		},
	}
	imp.Flags().StringVar(&impFormat, "format", "json", "import format")
	cmd.AddCommand(imp)

	cmd.AddCommand(&cobra.Command{
		Use:   "formats",
		Short: "List supported formats",
		RunE: func(c *cobra.Command, args []string) error {
			exp, imp := (*app).Library.Formats()
			fmt.Println("export:", strings.Join(exp, ", "))
			fmt.Println("import:", strings.Join(imp, ", "))
			return nil
		},
	})

	return cmd
}

func settingsCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{Use: "settings", Short: "Session settings and call history"}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Read a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			v, err := (*app).Settings.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			_, err := (*app).Settings.Set(args[0], args[1])
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "active <endpoint-id> <model>",
		Short: "Set the active endpoint and model",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			_, err = (*app).Settings.SetActive(id, args[1])
			return err
		},
	})

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "Show recent external calls",
		RunE: func(c *cobra.Command, args []string) error {
			records, err := (*app).Settings.CallHistory(limit)
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Printf("%s\t%s\t%s\t%s\t%dms\n",
					r.CreatedAt.Format("2006-01-02 15:04:05"), r.Kind, r.Model, r.Status, r.DurationMS)
			}
			return nil
		},
	}
	history.Flags().IntVar(&limit, "limit", 50, "max records")
	cmd.AddCommand(history)

	return cmd
}
