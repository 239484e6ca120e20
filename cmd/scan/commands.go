package main

import (
	"errors"
	"os/signal"
	"syscall"

	"lager/internal/apiclient"
	"lager/internal/capture"
	"lager/internal/config"
	"lager/internal/logger"
	"lager/internal/lookup"
	"lager/internal/workflow"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	apiURL   string
	language string
	logLevel string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "lager-scan",
		Short:         "Scan barcodes into the inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", "", "inventory API base URL (default from API_BASE_URL)")
	root.PersistentFlags().StringVar(&opts.language, "lang", "", "language for API messages (default from SERVER_LOCALE)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(newScanCommand(opts), newLookupCommand(opts))
	return root
}

// environment loads configuration and applies command-line overrides
func (o *rootOptions) environment() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()
	if o.apiURL != "" {
		cfg.Client.APIBaseURL = o.apiURL
	}
	if o.language != "" {
		cfg.Server.Locale = o.language
	}

	log, err := logger.New("development", o.logLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newScanCommand(root *rootOptions) *cobra.Command {
	opts := scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan <image>...",
		Short: "Decode a barcode from images and save the product",
		Long: "Reads the images in order until one holds a barcode. A known barcode " +
			"raises that product's quantity by one; an unknown one creates a product, " +
			"named from the product catalog when possible.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.environment()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := apiclient.New(cfg.Client, cfg.Server.Locale, log)
			session := capture.NewSession(capture.NewFileCamera(args...), capture.NewZXingDecoder(), log)

			return runScan(ctx, session, client, opts, cmd.OutOrStdout(), log)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the draft without saving it")
	cmd.Flags().StringVar(&opts.name, "name", "", "name to use when the catalog has none")
	cmd.Flags().IntVar(&opts.quantity, "quantity", 1, "starting quantity for new products")
	cmd.Flags().Int64Var(&opts.categoryID, "category", 0, "category id for new products")
	return cmd
}

func newLookupCommand(root *rootOptions) *cobra.Command {
	var viaAPI bool

	cmd := &cobra.Command{
		Use:   "lookup <barcode>",
		Short: "Look a barcode up in the product catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.environment()
			if err != nil {
				return err
			}
			defer log.Sync()

			var l workflow.Lookuper = lookup.NewClient(cfg.Lookup, cfg.Server.Locale, log)
			if viaAPI {
				l = apiclient.New(cfg.Client, cfg.Server.Locale, log)
			}

			result, ok := l.Lookup(cmd.Context(), args[0])
			if !ok {
				return errNoProductInfo
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVar(&viaAPI, "via-api", false, "use the inventory API's catalog proxy")
	return cmd
}

var (
	errNoBarcode     = errors.New("no barcode found in the given images")
	errNoProductInfo = errors.New("no product information found")
)

type scanOptions struct {
	dryRun     bool
	name       string
	quantity   int
	categoryID int64
}
