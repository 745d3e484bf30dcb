package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/config"
	"github.com/JonnyWalker81/cadence/backend/internal/logger"
	"github.com/JonnyWalker81/cadence/backend/internal/models"
	"github.com/JonnyWalker81/cadence/backend/internal/prediction"
	"github.com/JonnyWalker81/cadence/backend/internal/service"
	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast the next session from a JSON history file",
	Long: `Build the prediction model from a JSON array of sessions and print the
forecast and insights. Reads stdin when --file is "-".`,
	RunE: runPredict,
}

var (
	historyFile string
	predictNow  string
	verbose     bool
)

func init() {
	predictCmd.Flags().StringVarP(&historyFile, "file", "f", "-", "Session history JSON file")
	predictCmd.Flags().StringVar(&predictNow, "now", "", "Reference time as RFC3339 (defaults to the current time)")
	predictCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Include a model summary and log to stderr")
}

// predictOutput is the JSON document printed by the predict command
type predictOutput struct {
	Prediction *models.Prediction   `json:"prediction"`
	Insights   []models.Insight     `json:"insights"`
	Model      *models.ModelSummary `json:"model,omitempty"`
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithoutValidation()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Nop()
	if verbose {
		logCfg := cfg.Logging.LoggerConfig()
		logCfg.Level = logger.LevelDebug
		logCfg.Format = "text"
		logCfg.Output = cmd.ErrOrStderr()
		log = logger.NewSlogLogger(logCfg)
	}

	engineCfg, err := cfg.Prediction.EngineConfig()
	if err != nil {
		return err
	}

	now := time.Now()
	if predictNow != "" {
		now, err = time.Parse(time.RFC3339, predictNow)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
	}

	events, err := readHistory(cmd.InOrStdin(), historyFile)
	if err != nil {
		return err
	}

	out := predictHistory(prediction.NewEngine(engineCfg), events, now, verbose)

	if out.Model != nil {
		log.Debug("model built",
			logger.Int("history_size", len(events)),
			logger.Int("total_events", out.Model.TotalEvents),
			logger.Float64("half_life_days", out.Model.HalfLifeDays),
			logger.Int("active_slots", out.Model.ActiveSlots),
		)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// predictHistory runs the engine over a history as of now
func predictHistory(engine *prediction.Engine, events []models.Event, now time.Time, withSummary bool) predictOutput {
	model := engine.BuildModel(events, now)

	out := predictOutput{
		Prediction: engine.Predict(model, now),
		Insights:   engine.Insights(model),
	}
	if withSummary {
		out.Model = service.Summarize(model, engine.Config(), false)
	}
	return out
}

func readHistory(stdin io.Reader, path string) ([]models.Event, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		defer f.Close()
		r = f
	}

	var events []models.Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return events, nil
}
