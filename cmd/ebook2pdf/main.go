package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yuanying/ebook2pdf/internal/config"
	"github.com/yuanying/ebook2pdf/internal/converter"
	"github.com/yuanying/ebook2pdf/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ebook2pdf INPUT",
		Short: "Convert e-book files to paginated PDF",
		Long: `ebook2pdf extracts the text of an e-book (MOBI, AZW3, EPUB, FB2,
DOCX, RTF, TXT or PDF) and lays it out as freshly rendered raster pages
in a new PDF document. With --text it writes the extracted plain text
instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			return run(opts)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file path (default: input with .pdf or .txt extension)")
	cmd.Flags().Bool("text", false, "Write the extracted plain text instead of a PDF")
	cmd.Flags().Int("limit", 0, "Cap extracted text at this many bytes (0 = unlimited)")
	cmd.Flags().String("title", "", "Override the book title")
	cmd.Flags().Int("quality", 0, "JPEG quality for page rasters, 1-100")
	cmd.Flags().String("config", "", "Path to a YAML config file")
	cmd.Flags().Bool("debug", false, "Enable debug logging")
	return cmd
}

// cliOptions is the merged result of config file and command flags.
type cliOptions struct {
	converter.ConvertOptions
	Debug bool
}

// readCLIOptions builds the conversion options from the config file (when
// given) and the command flags. Flags override file values.
func readCLIOptions(cmd *cobra.Command, args []string) (cliOptions, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg := &config.Config{}
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cliOptions{}, err
		}
		cfg = loaded
	} else {
		config.ApplyDefaults(cfg)
	}

	opts := cliOptions{
		ConvertOptions: converter.ConvertOptions{
			InputPath:   args[0],
			Limit:       cfg.Extract.Limit,
			Quality:     cfg.Output.Quality,
			Page:        cfg.Page.Options(),
			RegularFont: cfg.Fonts.Regular,
			BoldFont:    cfg.Fonts.Bold,
		},
		Debug: cfg.Debug,
	}

	opts.OutputPath, _ = cmd.Flags().GetString("output")
	opts.Title, _ = cmd.Flags().GetString("title")
	opts.TextOnly, _ = cmd.Flags().GetBool("text")
	if cmd.Flags().Changed("limit") {
		opts.Limit, _ = cmd.Flags().GetInt("limit")
	}
	if cmd.Flags().Changed("quality") {
		opts.Quality, _ = cmd.Flags().GetInt("quality")
	}
	if cmd.Flags().Changed("debug") {
		opts.Debug, _ = cmd.Flags().GetBool("debug")
	}

	if opts.Quality < 1 || opts.Quality > 100 {
		return cliOptions{}, fmt.Errorf("--quality must be between 1 and 100, got %d", opts.Quality)
	}
	if opts.Limit < 0 {
		return cliOptions{}, fmt.Errorf("--limit must not be negative, got %d", opts.Limit)
	}

	return opts, nil
}

func run(opts cliOptions) error {
	logger, err := logging.New(opts.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	p := converter.NewPipeline(opts.ConvertOptions, logger)

	log.Printf("Converting: %s -> %s", opts.InputPath, p.OutputPath())

	if err := p.Convert(); err != nil {
		logger.Error("conversion failed", zap.Error(err))
		return fmt.Errorf("conversion failed: %s", converter.Explain(err))
	}

	log.Printf("Done: %s", p.OutputPath())
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
