package cmd

import (
	"context"
	"log"
	"os"

	"github.com/talentscout/hiring-assistant/internal/logger"
	"github.com/talentscout/hiring-assistant/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export recorded candidates, answers and transcripts as JSON",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		export(args)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

// export dumps the whole store as JSON to the given file, or stdout.
func export(args []string) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	db, err := store.Open(viper.GetString("store"))
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err))
	}
	defer db.Close()

	out := os.Stdout
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			logger.Fatal("creating the export file", zap.Error(err))
		}
		defer f.Close()
		out = f
	}

	if err := db.Export(context.Background(), out); err != nil {
		logger.Fatal("exporting", zap.Error(err))
	}

	if len(args) == 1 {
		logger.Info("export written", zap.String("file", args[0]))
	}
}
