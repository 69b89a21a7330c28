/*
Copyright © 2026 GrandZah

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	adapterrepo "github.com/GrandZah/Learning-Matan/internal/adapter/repository"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/config"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/database"
	"github.com/GrandZah/Learning-Matan/internal/usecase"
)

// statsCmd prints a learner's ledger summary: cards per confidence level and
// the total ever assigned.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a learner's progress by confidence level",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		userID, _ := cmd.Flags().GetInt64("user")
		if userID <= 0 {
			return fmt.Errorf("--user must be a positive id")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		ladder, err := usecase.NewLadder(cfg)
		if err != nil {
			return fmt.Errorf("build ladder: %w", err)
		}

		conn, cleanup, err := database.NewConn(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

		scheduler := usecase.NewSchedulerUsecase(
			adapterrepo.NewCardProgressRepository(conn),
			adapterrepo.NewCardRepository(conn),
			ladder,
		)
		stats, err := scheduler.Stats(ctx, userID)
		if err != nil {
			return err
		}

		levels := make([]int, 0, len(stats.CountsByLevel))
		for level := range stats.CountsByLevel {
			levels = append(levels, level)
		}
		sort.Ints(levels)

		cmd.Printf("user %d: %d cards assigned\n", stats.UserID, stats.TotalAssigned)
		for _, level := range levels {
			cmd.Printf("  level %d: %d\n", level, stats.CountsByLevel[level])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Int64("user", 0, "learner id to report on")
}
