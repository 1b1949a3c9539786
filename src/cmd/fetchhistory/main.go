package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quantumsuite/marketfetch/src/bulk"
	"github.com/quantumsuite/marketfetch/src/config"
	"github.com/quantumsuite/marketfetch/src/eventpubsub"
	"github.com/quantumsuite/marketfetch/src/export"
	"github.com/quantumsuite/marketfetch/src/models"
)

type RunArgs struct {
	Symbols    []string
	Exchange   string
	Kind       string
	Expiry     string
	Strike     float64
	Side       string
	From       string
	To         string
	ConfigPath string
	OutDir     string
	Format     string
}

type RunResult struct {
	Batch models.BatchResult
}

var runCmd = &cobra.Command{
	Use:   "fetchhistory --symbols RELIANCE,TCS --exchange NSE --kind equity --from 2024-01-01 --to 2024-03-31",
	Short: "Fetch historical equity and option data and export the merged tables",
	Run: func(cmd *cobra.Command, args []string) {
		runArgs := RunArgs{}

		var err error
		if runArgs.Symbols, err = cmd.Flags().GetStringSlice("symbols"); err != nil {
			log.Fatalf("error getting symbols: %v", err)
		}
		if runArgs.Exchange, err = cmd.Flags().GetString("exchange"); err != nil {
			log.Fatalf("error getting exchange: %v", err)
		}
		if runArgs.Kind, err = cmd.Flags().GetString("kind"); err != nil {
			log.Fatalf("error getting kind: %v", err)
		}
		if runArgs.Expiry, err = cmd.Flags().GetString("expiry"); err != nil {
			log.Fatalf("error getting expiry: %v", err)
		}
		if runArgs.Strike, err = cmd.Flags().GetFloat64("strike"); err != nil {
			log.Fatalf("error getting strike: %v", err)
		}
		if runArgs.Side, err = cmd.Flags().GetString("side"); err != nil {
			log.Fatalf("error getting side: %v", err)
		}
		if runArgs.From, err = cmd.Flags().GetString("from"); err != nil {
			log.Fatalf("error getting from date: %v", err)
		}
		if runArgs.To, err = cmd.Flags().GetString("to"); err != nil {
			log.Fatalf("error getting to date: %v", err)
		}
		if runArgs.ConfigPath, err = cmd.Flags().GetString("config"); err != nil {
			log.Fatalf("error getting config path: %v", err)
		}
		if runArgs.OutDir, err = cmd.Flags().GetString("out"); err != nil {
			log.Fatalf("error getting output dir: %v", err)
		}
		if runArgs.Format, err = cmd.Flags().GetString("format"); err != nil {
			log.Fatalf("error getting format: %v", err)
		}

		result, err := Run(runArgs)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		export.WriteSummary(os.Stdout, result.Batch)
	},
}

func Run(args RunArgs) (RunResult, error) {
	if err := config.InitEnvironmentVariables(); err != nil {
		log.Debugf("no environment file loaded: %v", err)
	}

	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	requests, err := buildRequests(args)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	eventpubsub.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	processor := bulk.NewProcessor(cfg)
	batch := processor.RunBatch(ctx, requests, func(index, total int, symbol models.StockSymbol) {
		log.Infof("[%d/%d] %s done", index, total, symbol)
	})

	if args.OutDir != "" {
		if err := exportBatch(args, batch, cfg); err != nil {
			return RunResult{Batch: batch}, fmt.Errorf("Run: %w", err)
		}
	}

	return RunResult{Batch: batch}, nil
}

func buildRequests(args RunArgs) ([]models.FetchRequest, error) {
	if len(args.Symbols) == 0 {
		return nil, fmt.Errorf("buildRequests: at least one symbol is required")
	}

	from, err := time.Parse("2006-01-02", args.From)
	if err != nil {
		return nil, fmt.Errorf("buildRequests: invalid from date %q: %w", args.From, err)
	}
	to, err := time.Parse("2006-01-02", args.To)
	if err != nil {
		return nil, fmt.Errorf("buildRequests: invalid to date %q: %w", args.To, err)
	}

	kind := models.InstrumentKind(args.Kind)

	var expiry *time.Time
	if args.Expiry != "" {
		e, err := time.Parse("2006-01-02", args.Expiry)
		if err != nil {
			return nil, fmt.Errorf("buildRequests: invalid expiry %q: %w", args.Expiry, err)
		}
		expiry = &e
	}

	var strike *float64
	if args.Strike > 0 {
		s := args.Strike
		strike = &s
	}

	side := models.OptionSide(args.Side)
	if args.Side == "" {
		side = models.SideBoth
	}

	requests := make([]models.FetchRequest, 0, len(args.Symbols))
	for _, symbol := range args.Symbols {
		req := models.FetchRequest{
			Symbol:      models.StockSymbol(strings.ToUpper(strings.TrimSpace(symbol))),
			Exchange:    models.Exchange(strings.ToUpper(args.Exchange)),
			Kind:        kind,
			ExpiryDate:  expiry,
			StrikePrice: strike,
			Side:        side,
			StartDate:   from,
			EndDate:     to,
		}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, nil
}

func exportBatch(args RunArgs, batch models.BatchResult, cfg config.Config) error {
	if err := os.MkdirAll(args.OutDir, 0755); err != nil {
		return fmt.Errorf("exportBatch: %w", err)
	}

	opts := export.Options{
		Placeholder:         cfg.Placeholder,
		EquityOIPlaceholder: cfg.EquityOIPlaceholder,
	}

	if args.Format == "xlsx" {
		path := filepath.Join(args.OutDir, fmt.Sprintf("marketdata-%s.xlsx", time.Now().Format("20060102_150405")))
		return export.WriteWorkbook(path, batch, opts)
	}

	for _, symbol := range batch.Order {
		outcome := batch.Outcomes[symbol]
		if outcome.Failed() {
			continue
		}
		path := filepath.Join(args.OutDir, fmt.Sprintf("%s.csv", symbol))
		if err := export.WriteCSV(path, outcome.Result, opts); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	runCmd.PersistentFlags().StringSlice("symbols", []string{}, "Instrument symbols to fetch")
	runCmd.PersistentFlags().String("exchange", "NSE", "Exchange to fetch from (NSE or BSE)")
	runCmd.PersistentFlags().String("kind", "equity", "Instrument kind: equity, index-option, or equity-option")
	runCmd.PersistentFlags().String("expiry", "", "Expiry date (YYYY-MM-DD), required for option kinds")
	runCmd.PersistentFlags().Float64("strike", 0, "Strike price, required for option kinds")
	runCmd.PersistentFlags().String("side", "", "Option side: call, put, or both")
	runCmd.PersistentFlags().String("from", "", "Start date (YYYY-MM-DD)")
	runCmd.PersistentFlags().String("to", "", "End date (YYYY-MM-DD)")
	runCmd.PersistentFlags().String("config", "", "Path to YAML scraper config")
	runCmd.PersistentFlags().String("out", "", "Output directory for exports")
	runCmd.PersistentFlags().String("format", "csv", "Export format: csv or xlsx")

	if err := runCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
