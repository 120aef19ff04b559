package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/store"
)

type app struct {
	url     string
	token   string
	timeout time.Duration
	verbose bool

	log    *logrus.Logger
	client *ledger.Client
	store  *store.Store
}

func main() {
	_ = godotenv.Load()

	a := &app{log: logrus.New()}
	a.log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return def
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect and edit your nutrition ledger",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.url == "" {
				return fmt.Errorf("ledger url is required (--url or LEDGER_URL)")
			}
			a.log.SetLevel(logrus.WarnLevel)
			if a.verbose {
				a.log.SetLevel(logrus.DebugLevel)
			}
			a.client = ledger.NewClient(a.url, a.token, ledger.WithTimeout(a.timeout), ledger.WithLogger(a.log))
			a.store = store.New(a.client, store.WithLogger(a.log))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.url, "url", envOr("LEDGER_URL", "http://localhost:8080"), "ledger service base url")
	pf.StringVar(&a.token, "token", os.Getenv("LEDGER_TOKEN"), "bearer token")
	pf.DurationVar(&a.timeout, "timeout", envDuration("LEDGER_TIMEOUT", ledger.DefaultTimeout), "per-request timeout")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log every request")

	root.AddCommand(
		a.summaryCmd(),
		a.logCmd(),
		a.editCmd(),
		a.deleteCmd(),
		a.eatCmd(),
		a.goalCmd(),
		a.plansCmd(),
		a.dayCmd(),
		a.historyCmd(),
		a.noteCmd(),
		a.watchCmd(),
	)
	return root
}

func parseID(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(v), nil
}

func parseCalories(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid calories %q", s)
	}
	return v, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" || s == "today" {
		return time.Now(), nil
	}
	return time.ParseInLocation(ledger.DateLayout, s, time.Local)
}
