package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	postgresRepo "github.com/sagarline/sheetledger/internal/adapter/repository/postgres"
	redisRepo "github.com/sagarline/sheetledger/internal/adapter/repository/redis"
	"github.com/sagarline/sheetledger/internal/domain"
	"github.com/sagarline/sheetledger/internal/infrastructure/config"
	"github.com/sagarline/sheetledger/internal/infrastructure/logger"
	"github.com/sagarline/sheetledger/internal/infrastructure/metrics"
	"github.com/sagarline/sheetledger/internal/infrastructure/postgres"
	"github.com/sagarline/sheetledger/internal/infrastructure/redis"
	"github.com/sagarline/sheetledger/internal/usecase"
)

// app bundles everything a command needs once the stack is wired.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	ledger *usecase.LedgerUseCase
	sheets *usecase.SheetUseCase
	report *usecase.ReportUseCase
	cont   *usecase.ContainerUseCase

	close func()
}

var (
	actor  string
	asJSON bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sheetledger",
		Short:         "Back-office ledger sheets",
		Long:          "Manage ledger sheets, entries and container summaries with engine-maintained balances.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&actor, "actor", "", "acting user recorded on mutations (default from DEFAULT_ACTOR)")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")

	rootCmd.AddCommand(
		migrateCmd(),
		sheetCmd(),
		entryCmd(),
		reportCmd(),
		containerCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	closers := []func(){pool.Close}

	var cache usecase.Cache = redisRepo.NewNullCache()

	if cfg.CacheEnabled {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, summaries will not be cached")
		} else {
			cache = redisRepo.NewCache(client)
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	txManager := postgresRepo.NewTxManager(pool)
	sheetRepo := postgresRepo.NewSheetRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	containerRepo := postgresRepo.NewContainerRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()
	m := metrics.New()

	a := &app{
		cfg:    cfg,
		log:    log,
		ledger: usecase.NewLedgerUseCase(txManager, sheetRepo, entryRepo, auditRepo, idGen, retrier, cache, m),
		sheets: usecase.NewSheetUseCase(txManager, sheetRepo, entryRepo, auditRepo, idGen, retrier, cache, m),
		report: usecase.NewReportUseCase(sheetRepo, entryRepo, ledgerRepo, auditRepo, cache, m),
		cont:   usecase.NewContainerUseCase(txManager, containerRepo, auditRepo, idGen, m),
		close: func() {
			for _, c := range closers {
				c()
			}
		},
	}

	if actor == "" {
		actor = cfg.DefaultActor
	}

	return a, nil
}

// withApp wires the stack, runs fn and tears the stack down again.
func withApp(fn func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		return fn(ctx, a)
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath)
			},
		},
	)

	return cmd
}

func sheetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Sheet lifecycle",
	}

	var (
		book        string
		name        string
		description string
		opening     string
		source      string
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a sheet",
		RunE: withApp(func(ctx context.Context, a *app) error {
			sheet, err := a.sheets.CreateSheet(ctx, usecase.CreateSheetInput{
				BookCode:       book,
				Name:           name,
				Description:    description,
				OpeningBalance: domain.ParseAmount(opening),
				SourceSheetID:  source,
				Actor:          actor,
			})
			if err != nil {
				return err
			}
			return printSheet(sheet)
		}),
	}
	createCmd.Flags().StringVar(&book, "book", "", "book code (pettycash, cityledger, partner)")
	createCmd.Flags().StringVar(&name, "name", "", "sheet name, unique within the book")
	createCmd.Flags().StringVar(&description, "description", "", "free-form description")
	createCmd.Flags().StringVar(&opening, "opening", "0", "opening balance")
	createCmd.Flags().StringVar(&source, "from", "", "source sheet ID to duplicate")
	_ = createCmd.MarkFlagRequired("book")
	_ = createCmd.MarkFlagRequired("name")

	var (
		listBook   string
		listStatus string
		limit      int
		offset     int
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sheets",
		RunE: withApp(func(ctx context.Context, a *app) error {
			var status *domain.SheetStatus
			if listStatus != "" {
				s := domain.SheetStatus(listStatus)
				status = &s
			}

			sheets, err := a.sheets.ListSheets(ctx, usecase.ListSheetsInput{
				BookCode: listBook,
				Status:   status,
				Limit:    limit,
				Offset:   offset,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(sheets)
			}

			for _, s := range sheets {
				fmt.Printf("%s  %-10s  %-8s  %-30s  closing %s\n",
					s.ID, s.BookCode, s.Status, s.Name, s.ClosingBalance)
			}
			return nil
		}),
	}
	listCmd.Flags().StringVar(&listBook, "book", "", "filter by book code")
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (ACTIVE, ARCHIVED)")
	listCmd.Flags().IntVar(&limit, "limit", 50, "page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	getCmd := &cobra.Command{
		Use:   "get <sheet-id>",
		Short: "Show a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			sheet, err := a.sheets.GetSheet(ctx, args[0])
			if err != nil {
				return err
			}
			return printSheet(sheet)
		}),
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <sheet-id>",
		Short: "Delete a sheet (archives it when entries exist)",
		Args:  cobra.ExactArgs(1),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			result, err := a.sheets.DeleteSheet(ctx, args[0], actor)
			if err != nil {
				return err
			}
			if result.Archived {
				fmt.Printf("sheet %s archived (has entries)\n", result.SheetID)
			} else {
				fmt.Printf("sheet %s deleted\n", result.SheetID)
			}
			return nil
		}),
	}

	archiveCmd := &cobra.Command{
		Use:   "archive <sheet-id>",
		Short: "Archive a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			if err := a.sheets.ArchiveSheet(ctx, args[0], actor); err != nil {
				return err
			}
			fmt.Printf("sheet %s archived\n", args[0])
			return nil
		}),
	}

	restoreCmd := &cobra.Command{
		Use:   "restore <sheet-id>",
		Short: "Restore an archived sheet",
		Args:  cobra.ExactArgs(1),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			if err := a.sheets.RestoreSheet(ctx, args[0], actor); err != nil {
				return err
			}
			fmt.Printf("sheet %s restored\n", args[0])
			return nil
		}),
	}

	lockCmd := &cobra.Command{
		Use:   "lock <sheet-id>",
		Short: "Lock a sheet against entry mutations",
		Args:  cobra.ExactArgs(1),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			return setLocked(ctx, a, args[0], true)
		}),
	}

	unlockCmd := &cobra.Command{
		Use:   "unlock <sheet-id>",
		Short: "Unlock a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			return setLocked(ctx, a, args[0], false)
		}),
	}

	setOpeningCmd := &cobra.Command{
		Use:   "set-opening <sheet-id> <amount>",
		Short: "Change a sheet's opening balance",
		Args:  cobra.ExactArgs(2),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			sheet, err := a.ledger.ChangeOpeningBalance(ctx, args[0], domain.ParseAmount(args[1]), actor)
			if err != nil {
				return err
			}
			return printSheet(sheet)
		}),
	}

	entriesCmd := &cobra.Command{
		Use:   "entries <sheet-id>",
		Short: "List a sheet's entries",
		Args:  cobra.ExactArgs(1),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			entries, err := a.sheets.ListEntries(ctx, args[0], limit, offset)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(entries)
			}

			for _, e := range entries {
				fmt.Printf("%s  %s  %-8s  C %-12s D %-12s  %s\n",
					e.ID, e.EntryDate.Format("2006-01-02"), e.Kind,
					e.CreditAmount, e.DebitAmount, e.Particulars)
			}
			return nil
		}),
	}
	entriesCmd.Flags().IntVar(&limit, "limit", 50, "page size")
	entriesCmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	cmd.AddCommand(createCmd, listCmd, getCmd, deleteCmd, archiveCmd,
		restoreCmd, lockCmd, unlockCmd, setOpeningCmd, entriesCmd)

	return cmd
}

func setLocked(ctx context.Context, a *app, sheetID string, locked bool) error {
	sheet, err := a.sheets.UpdateSheet(ctx, usecase.UpdateSheetInput{
		SheetID: sheetID,
		Locked:  &locked,
		Actor:   actor,
	})
	if err != nil {
		return err
	}
	return printSheet(sheet)
}

func entryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Entry mutations (balances recomputed by the engine)",
	}

	var (
		sheetID     string
		kind        string
		date        string
		particulars string
		amount      string
		tag         string
		note        string
	)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an entry to a sheet",
		RunE: withApp(func(ctx context.Context, a *app) error {
			entryDate, err := parseDate(date)
			if err != nil {
				return err
			}

			entry, err := a.ledger.AddEntry(ctx, usecase.AddEntryInput{
				SheetID:     sheetID,
				Kind:        domain.EntryKind(kind),
				EntryDate:   entryDate,
				Particulars: particulars,
				Amount:      domain.ParseAmount(amount),
				Tag:         tag,
				Note:        note,
				Actor:       actor,
			})
			if err != nil {
				return err
			}
			return printEntry(entry)
		}),
	}
	addCmd.Flags().StringVar(&sheetID, "sheet", "", "sheet ID")
	addCmd.Flags().StringVar(&kind, "kind", "", "entry kind (CREDIT, DEBIT, ADVANCE, EXPENSE)")
	addCmd.Flags().StringVar(&date, "date", "", "entry date YYYY-MM-DD (default today)")
	addCmd.Flags().StringVar(&particulars, "particulars", "", "line description")
	addCmd.Flags().StringVar(&amount, "amount", "", "positive amount")
	addCmd.Flags().StringVar(&tag, "tag", "", "grouping tag, e.g. container code")
	addCmd.Flags().StringVar(&note, "note", "", "free-form note")
	_ = addCmd.MarkFlagRequired("sheet")
	_ = addCmd.MarkFlagRequired("kind")
	_ = addCmd.MarkFlagRequired("amount")

	updateCmd := &cobra.Command{
		Use:   "update <entry-id>",
		Short: "Patch an entry",
		Args:  cobra.ExactArgs(1),
	}
	updateCmd.Flags().StringVar(&kind, "kind", "", "new entry kind")
	updateCmd.Flags().StringVar(&date, "date", "", "new entry date YYYY-MM-DD")
	updateCmd.Flags().StringVar(&particulars, "particulars", "", "new description")
	updateCmd.Flags().StringVar(&amount, "amount", "", "new amount")
	updateCmd.Flags().StringVar(&tag, "tag", "", "new tag")
	updateCmd.Flags().StringVar(&note, "note", "", "new note")
	updateCmd.RunE = withAppArgs(func(ctx context.Context, a *app, args []string) error {
		input := usecase.UpdateEntryInput{EntryID: args[0], Actor: actor}

		flags := updateCmd.Flags()
		if flags.Changed("kind") {
			k := domain.EntryKind(kind)
			input.Kind = &k
		}
		if flags.Changed("date") {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			input.EntryDate = &d
		}
		if flags.Changed("particulars") {
			input.Particulars = &particulars
		}
		if flags.Changed("amount") {
			v := domain.ParseAmount(amount)
			input.Amount = &v
		}
		if flags.Changed("tag") {
			input.Tag = &tag
		}
		if flags.Changed("note") {
			input.Note = &note
		}

		entry, err := a.ledger.UpdateEntry(ctx, input)
		if err != nil {
			return err
		}
		return printEntry(entry)
	})

	deleteCmd := &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			if err := a.ledger.DeleteEntry(ctx, args[0], actor); err != nil {
				return err
			}
			fmt.Printf("entry %s deleted\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(addCmd, updateCmd, deleteCmd)

	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Read-only aggregations",
	}

	summaryCmd := &cobra.Command{
		Use:   "summary <sheet-id>",
		Short: "Show a sheet summary",
		Args:  cobra.ExactArgs(1),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			summary, err := a.report.SheetSummary(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(summary)
		}),
	}

	tagsCmd := &cobra.Command{
		Use:   "tags <sheet-id>",
		Short: "Group a sheet's entries by tag",
		Args:  cobra.ExactArgs(1),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			totals, err := a.report.TagTotals(ctx, args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(totals)
			}

			for _, total := range totals {
				fmt.Printf("%-20s  C %-12s D %-12s  (%d entries)\n",
					total.Tag, total.TotalCredit, total.TotalDebit, total.EntryCount)
			}
			return nil
		}),
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify stored aggregates against entry sums",
		RunE: withApp(func(ctx context.Context, a *app) error {
			drift, err := a.report.CheckConsistency(ctx)
			if err != nil {
				return err
			}

			if len(drift) == 0 {
				fmt.Println("ledger consistent: all sheet aggregates match their entries")
				return nil
			}

			for _, d := range drift {
				fmt.Printf("DRIFT %s (%s): stored C/D %s/%s, computed %s/%s\n",
					d.SheetID, d.Name, d.StoredCredit, d.StoredDebit,
					d.ComputedCredit, d.ComputedDebit)
			}
			return fmt.Errorf("%d sheet(s) out of sync", len(drift))
		}),
	}

	var (
		resourceType string
		auditLimit   int
		auditOffset  int
	)

	auditCmd := &cobra.Command{
		Use:   "audit <resource-id>",
		Short: "Show the mutation history of a sheet, entry or container",
		Args:  cobra.ExactArgs(1),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			logs, err := a.report.AuditTrail(ctx, resourceType, args[0], auditLimit, auditOffset)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(logs)
			}

			for _, l := range logs {
				fmt.Printf("%s  %-24s  %-12s  %s\n",
					l.CreatedAt.Format(time.RFC3339), l.Action, l.Actor, l.ResourceID)
			}
			return nil
		}),
	}
	auditCmd.Flags().StringVar(&resourceType, "type", "sheet", "resource type (sheet, entry, container)")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "max logs to return")
	auditCmd.Flags().IntVar(&auditOffset, "offset", 0, "logs to skip")

	cmd.AddCommand(summaryCmd, tagsCmd, checkCmd, auditCmd)

	return cmd
}

func containerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "container",
		Short: "Container customs summaries",
	}

	var (
		code        string
		description string
		value       string
		bcdRate     string
		swsRate     string
		igstRate    string
	)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a container with its duty breakdown",
		RunE: withApp(func(ctx context.Context, a *app) error {
			summary, err := a.cont.CreateContainer(ctx, usecase.CreateContainerInput{
				Code:            code,
				Description:     description,
				AssessableValue: domain.ParseAmount(value),
				BCDRate:         domain.ParseAmount(bcdRate),
				SWSRate:         domain.ParseAmount(swsRate),
				IGSTRate:        domain.ParseAmount(igstRate),
				Actor:           actor,
			})
			if err != nil {
				return err
			}
			return printJSON(summary)
		}),
	}
	addCmd.Flags().StringVar(&code, "code", "", "container code")
	addCmd.Flags().StringVar(&description, "description", "", "description")
	addCmd.Flags().StringVar(&value, "value", "", "assessable value")
	addCmd.Flags().StringVar(&bcdRate, "bcd", "10", "basic customs duty rate percent")
	addCmd.Flags().StringVar(&swsRate, "sws", "10", "social welfare surcharge rate percent")
	addCmd.Flags().StringVar(&igstRate, "igst", "18", "IGST rate percent")
	_ = addCmd.MarkFlagRequired("code")
	_ = addCmd.MarkFlagRequired("value")

	var (
		limit  int
		offset int
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List container summaries",
		RunE: withApp(func(ctx context.Context, a *app) error {
			summaries, err := a.cont.ListContainers(ctx, limit, offset)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(summaries)
			}

			for _, s := range summaries {
				fmt.Printf("%s  %-15s  value %-12s duty %-12s landed %s\n",
					s.ID, s.Code, s.AssessableValue, s.TotalDuty, s.LandedCost)
			}
			return nil
		}),
	}
	listCmd.Flags().IntVar(&limit, "limit", 50, "page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	deleteCmd := &cobra.Command{
		Use:   "delete <container-id>",
		Short: "Delete a container summary",
		Args:  cobra.ExactArgs(1),
		RunE: withAppArgs(func(ctx context.Context, a *app, args []string) error {
			if err := a.cont.DeleteContainer(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("container %s deleted\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(addCmd, listCmd, deleteCmd)

	return cmd
}

// withAppArgs is withApp for commands that take positional arguments.
func withAppArgs(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		return fn(ctx, a, args)
	}
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}

	return d, nil
}

func printSheet(sheet *domain.Sheet) error {
	if asJSON {
		return printJSON(sheet)
	}

	fmt.Printf("ID:       %s\n", sheet.ID)
	fmt.Printf("Book:     %s\n", sheet.BookCode)
	fmt.Printf("Name:     %s\n", sheet.Name)
	fmt.Printf("Status:   %s  locked=%v\n", sheet.Status, sheet.Locked)
	fmt.Printf("Opening:  %s\n", sheet.OpeningBalance)
	fmt.Printf("Credit:   %s\n", sheet.TotalCredit)
	fmt.Printf("Debit:    %s\n", sheet.TotalDebit)
	fmt.Printf("Closing:  %s\n", sheet.ClosingBalance)
	return nil
}

func printEntry(entry *domain.Entry) error {
	if asJSON {
		return printJSON(entry)
	}

	fmt.Printf("ID:      %s\n", entry.ID)
	fmt.Printf("Sheet:   %s\n", entry.SheetID)
	fmt.Printf("Kind:    %s\n", entry.Kind)
	fmt.Printf("Date:    %s\n", entry.EntryDate.Format("2006-01-02"))
	fmt.Printf("Credit:  %s\n", entry.CreditAmount)
	fmt.Printf("Debit:   %s\n", entry.DebitAmount)
	if entry.Tag != "" {
		fmt.Printf("Tag:     %s\n", entry.Tag)
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}
