package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"portfolioanalysis/api"
	"portfolioanalysis/cmd"
	"portfolioanalysis/internal/calculator"
	"portfolioanalysis/internal/logger"
	"portfolioanalysis/internal/service"
	"portfolioanalysis/internal/util"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type windowFlags struct {
	start string
	end   string
	days  int
}

func (f *windowFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.start, "start", "", "start date, YYYY-MM-DD")
	c.Flags().StringVar(&f.end, "end", "", "end date, YYYY-MM-DD (default today)")
	c.Flags().IntVar(&f.days, "days", 0, "days of history when --start is not set")
}

func (f windowFlags) resolve(config *util.Config) (time.Time, time.Time, error) {
	days := f.days
	if days <= 0 {
		days = config.Analysis.HistoryDays
	}
	return util.HistoryWindow(f.start, f.end, days, time.Now())
}

func initialize() (*util.Config, *api.ApiHandler, error) {
	config, err := util.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	handler, err := cmd.InitializeDependencies(config)
	if err != nil {
		return nil, nil, err
	}
	return config, handler, nil
}

func commandContext(handler *api.ApiHandler) context.Context {
	return logger.WithLogger(context.Background(), handler.Logger)
}

func serveCommand() *cobra.Command {
	var (
		port   int
		routes []string
	)
	c := &cobra.Command{
		Use:   "serve",
		Short: "run the http api",
		RunE: func(c *cobra.Command, args []string) error {
			config, handler, err := initialize()
			if err != nil {
				return err
			}
			defer cmd.CloseDependencies(handler)

			for _, r := range routes {
				if !contains(api.AllRoutes, r) {
					return fmt.Errorf("unknown service %q, expected one of %s", r, strings.Join(api.AllRoutes, ", "))
				}
			}
			handler.Routes = routes
			if port == 0 {
				port = config.Server.Port
			}

			handler.Logger.Infof("starting api on port %d", port)
			return handler.StartApi(port)
		},
	}
	c.Flags().IntVar(&port, "port", 0, "port to listen on (default from config)")
	c.Flags().StringSliceVar(&routes, "service", nil, "route groups to serve: "+strings.Join(api.AllRoutes, ", ")+" (default all)")
	return c
}

func analyzeCommand() *cobra.Command {
	var (
		window       windowFlags
		weights      []float64
		riskFreeRate float64
		seed         int64
	)
	c := &cobra.Command{
		Use:   "analyze TICKER...",
		Short: "compute return, volatility and sharpe ratio of a portfolio",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			config, handler, err := initialize()
			if err != nil {
				return err
			}
			defer cmd.CloseDependencies(handler)

			start, end, err := window.resolve(config)
			if err != nil {
				return err
			}
			input := service.OptimizeInput{
				Symbols: args,
				Start:   start,
				End:     end,
			}
			if c.Flags().Changed("weights") {
				input.Weights = weights
			}
			if c.Flags().Changed("risk-free-rate") {
				input.RiskFreeRate = &riskFreeRate
			}
			if c.Flags().Changed("seed") {
				input.Seed = &seed
			}

			result, err := handler.AnalysisService.Optimize(commandContext(handler), input)
			if err != nil {
				return err
			}
			util.Pprint(result)
			return nil
		},
	}
	window.register(c)
	c.Flags().Float64SliceVar(&weights, "weights", nil, "weights in ticker order, random when omitted")
	c.Flags().Float64Var(&riskFreeRate, "risk-free-rate", 0, "risk free rate as a decimal (default from config)")
	c.Flags().Int64Var(&seed, "seed", 0, "seed for random weights")
	return c
}

func frontierCommand() *cobra.Command {
	var (
		window windowFlags
		mode   string
		count  int
		seed   int64
	)
	c := &cobra.Command{
		Use:   "frontier TICKER...",
		Short: "sample the risk/return frontier of a set of tickers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			config, handler, err := initialize()
			if err != nil {
				return err
			}
			defer cmd.CloseDependencies(handler)

			start, end, err := window.resolve(config)
			if err != nil {
				return err
			}
			frontierMode, err := calculator.ParseFrontierMode(mode)
			if err != nil {
				return err
			}
			input := service.FrontierInput{
				Symbols: args,
				Mode:    frontierMode,
				Count:   count,
				Start:   start,
				End:     end,
			}
			if c.Flags().Changed("seed") {
				input.Seed = &seed
			}

			result, err := handler.AnalysisService.Frontier(commandContext(handler), input)
			if err != nil {
				return err
			}
			util.Pprint(result)
			return nil
		},
	}
	window.register(c)
	c.Flags().StringVar(&mode, "mode", string(calculator.MonteCarloMode), "montecarlo or interpolation")
	c.Flags().IntVar(&count, "count", 0, "number of points (default from config)")
	c.Flags().Int64Var(&seed, "seed", 0, "seed for monte carlo draws")
	return c
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func main() {
	fmt.Println(os.Getenv("commit_hash"))

	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "portfolio analysis services",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&cmd.UseOfflinePrices, "offline", false, "use generated prices instead of market data")
	root.AddCommand(serveCommand(), analyzeCommand(), frontierCommand())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
