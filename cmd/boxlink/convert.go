package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"boxlink/internal/collectors"
	"boxlink/internal/config"
	"boxlink/internal/convert"
	"boxlink/internal/logger"
	"boxlink/internal/metrics"
	"boxlink/internal/singbox"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	flagOutput   string
	flagSave     string
	flagPublish  []string
	flagReport   bool
	flagDedupe   bool
	convertParam map[string]string
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert share links and subscriptions into a sing-box config",
	Long: `Reads share links (vless://, vmess://, hy2://, hysteria2://) and subscription
URLs from the given files, or stdin when none or "-" is given, and writes the
resulting sing-box document to stdout or --output. Lines that cannot be used are
reported and skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			logger.Log.Fatalf("Error loading config: %v", err)
		}

		text, err := readInput(args)
		if err != nil {
			logger.Log.Fatalf("Error reading input: %v", err)
		}
		lines := singbox.SplitLines(text)

		collector, err := collectors.Get(cfg.Subscription.Collector)
		if err != nil {
			logger.Log.Fatalf("Error loading collector: %v", err)
		}
		params := cfg.CollectorParams()
		for k, v := range convertParam {
			params[k] = v
		}

		conv := convert.New(collector, params, cfg.Document.Options())
		conv.Concurrency = cfg.Subscription.Concurrency
		conv.Dedupe = cfg.Subscription.Dedupe || flagDedupe

		subs := 0
		for _, l := range lines {
			if singbox.IsSubscription(l) {
				subs++
			}
		}
		if subs > 0 {
			bar := progressbar.NewOptions(subs,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(15),
				progressbar.OptionSetDescription("[cyan]Fetching...[reset]"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)
			conv.OnFetch = func(convert.FetchStat) { bar.Add(1) }
			defer func() {
				bar.Finish()
				fmt.Fprintln(os.Stderr)
			}()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		start := time.Now()
		res, err := conv.Convert(ctx, lines)

		for _, d := range res.Diagnostics {
			logger.Log.Warn(d.String())
		}
		if len(res.Skipped) > 0 {
			logger.Log.Infof("Skipped %d unsupported line(s)", len(res.Skipped))
		}
		if flagReport {
			m := metrics.New()
			m.RecordResult(res)
			m.PrintReport(os.Stderr)
		}

		if err != nil {
			if errors.Is(err, singbox.ErrNoValidOutbounds) {
				logger.Log.Error("No valid configurations were found in the input.")
			} else {
				logger.Log.Errorf("Conversion aborted: %v", err)
			}
			logger.Sync()
			os.Exit(1)
		}

		doc, err := singbox.Encode(res.Config)
		if err != nil {
			logger.Log.Fatalf("Error encoding config: %v", err)
		}
		logger.Log.Infof("🏁 Converted %d proxies in %s", len(res.Proxies), time.Since(start).Round(time.Millisecond))

		if flagOutput == "" || flagOutput == "-" {
			os.Stdout.Write(doc)
			fmt.Fprintln(os.Stdout)
		} else {
			if err := os.WriteFile(flagOutput, doc, 0644); err != nil {
				logger.Log.Fatalf("Error writing output: %v", err)
			}
			logger.Log.Infof("💾 Wrote %s", flagOutput)
		}

		var name string
		if cmd.Flags().Changed("save") {
			name = strings.TrimSpace(flagSave)
			if name == "" {
				name = promptName()
			}
			st, closeDB := openStore(cfg)
			saved, err := st.Save(name, doc)
			closeDB()
			if err != nil {
				logger.Log.Fatalf("Error saving config: %v", err)
			}
			logger.Log.Infof("💾 Saved as %q", saved)
			name = saved
		}

		if len(flagPublish) > 0 {
			cfg.FilterPublishers(flagPublish)
			if len(cfg.Publishers) == 0 {
				logger.Log.Warn("No publishers matched.")
				return
			}
			if runPublishers(cfg, name, doc) > 0 {
				logger.Sync()
				os.Exit(1)
			}
		}
	},
}

func init() {
	convertCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write the document to a file instead of stdout")
	convertCmd.Flags().StringVar(&flagSave, "save", "", "Save the document under this name (prompts when empty)")
	convertCmd.Flags().Lookup("save").NoOptDefVal = " "
	convertCmd.Flags().StringSliceVar(&flagPublish, "publish", nil, "Run the named publishers on the document")
	convertCmd.Flags().BoolVar(&flagReport, "report", false, "Print a conversion report to stderr")
	convertCmd.Flags().BoolVar(&flagDedupe, "dedupe", false, "Drop repeated links before parsing")
	convertCmd.Flags().StringToStringVarP(&convertParam, "param", "p", nil, "Override collector params (e.g. -p user_agent=clash)")
	rootCmd.AddCommand(convertCmd)
}
