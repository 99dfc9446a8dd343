package cli

import (
	"github.com/spf13/cobra"

	"journey-quiz-service/internal/infra/postgres"
	"journey-quiz-service/internal/questionbank"
)

// NewSeedCmd loads a question bank into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the question bank into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Quiz.QuestionsFile
			}
			pool, err := questionbank.NewLoader(file).LoadQuestions(cmd.Context())
			if err != nil {
				return err
			}

			if err := runMigrations(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			db, err := openBunDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := postgres.SeedQuestions(cmd.Context(), db, pool)
			if err != nil {
				return err
			}
			logger.Info("question bank seeded", "questions", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML question bank (defaults to quiz.questions_file, then the built-in bank)")
	return cmd
}
