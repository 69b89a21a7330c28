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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	adapterrepo "github.com/GrandZah/Learning-Matan/internal/adapter/repository"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/cardsource"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/config"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/database"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/server"
)

const (
	catalogDirKey   = "catalog.dir"
	catalogGitKey   = "catalog.git_url"
	catalogCacheKey = "catalog.cache_dir"
)

// ingestCmd scans a directory (or a git checkout) for card images and inserts
// any image ref not already in the catalog.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest card images into the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := server.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}

		root := viper.GetString(catalogDirKey)
		if gitURL := viper.GetString(catalogGitKey); gitURL != "" {
			root, err = cardsource.CachePath(gitURL, viper.GetString(catalogCacheKey))
			if err != nil {
				return err
			}
			logger.Infof("syncing %s into %s", gitURL, root)
			if err := cardsource.Sync(gitURL, root); err != nil {
				return err
			}
		}

		refs, err := cardsource.Scan(root)
		if err != nil {
			return err
		}

		conn, cleanup, err := database.NewConn(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

		cards := adapterrepo.NewCardRepository(conn)
		inserted, skipped := 0, 0
		for _, ref := range refs {
			_, created, err := cards.Ensure(ctx, ref)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", ref, err)
			}
			if created {
				inserted++
			} else {
				skipped++
			}
		}

		logger.Infof("ingested %d new cards, %d already present (catalog root: %s)", inserted, skipped, root)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("dir", "", "directory of card images")
	ingestCmd.Flags().String("git", "", "git repository of card images, cloned-or-pulled before scanning")
	ingestCmd.Flags().String("cache-dir", "", "checkout cache for --git (default: user cache dir)")

	bindFlagToViper(catalogDirKey, ingestCmd.Flags().Lookup("dir"))
	bindFlagToViper(catalogGitKey, ingestCmd.Flags().Lookup("git"))
	bindFlagToViper(catalogCacheKey, ingestCmd.Flags().Lookup("cache-dir"))
}
