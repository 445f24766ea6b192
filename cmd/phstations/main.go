// Command phstations prints the station catalog the way the app would list
// it, and can follow one stream's now-playing title.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	logging "github.com/ipfs/go-log/v2"

	"github.com/edward-ap/phradio/internal/catalog"
	"github.com/edward-ap/phradio/internal/config"
	"github.com/edward-ap/phradio/internal/favorites"
	"github.com/edward-ap/phradio/internal/metadata"
)

var logger = logging.Logger("phradio/phstations")

func main() {
	cfgPath := flag.String("config", "", "path to the config file (default: user config dir)")
	category := flag.String("category", catalog.CategoryAll, "category filter: "+strings.Join(catalog.CategoryNames(), ", "))
	search := flag.String("search", "", "case-insensitive name or tag filter")
	limit := flag.Int("limit", 0, "override the catalog size")
	peek := flag.String("peek", "", "station ID or name to follow for now-playing titles")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *verbose {
		logging.SetAllLoggers(logging.LevelDebug)
	}
	if err := run(*cfgPath, *category, *search, *limit, *peek); err != nil {
		fmt.Fprintln(os.Stderr, "phstations:", err)
		os.Exit(1)
	}
}

func run(cfgPath, category, search string, limit int, peek string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	opts := cfg.CatalogOptions()
	if limit > 0 {
		opts.Limit = limit
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stations, err := catalog.NewClient(nil, opts).Stations(ctx)
	if err != nil {
		return err
	}

	favs := openFavorites(cfg)
	visible := catalog.Filter(stations, category, search, favs)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTAG\tREGION\tFAV")
	for _, st := range visible {
		mark := ""
		if favs.Contains(st.ID) {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", st.ID, st.Name, st.PrimaryTag(), st.Region("Philippines"), mark)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d of %d stations\n", len(visible), len(stations))

	if peek == "" {
		return nil
	}
	st, ok := findStation(stations, peek)
	if !ok {
		return fmt.Errorf("no station matches %q", peek)
	}
	fmt.Printf("following %s (%s), Ctrl+C to stop\n", st.Name, st.URL)
	w := metadata.NewWatcher(nil, logger, cfg.UserAgent)
	err = w.Watch(ctx, st.URL, func(info metadata.Info) {
		if info.Station != "" {
			fmt.Printf("%s | %s\n", info.Station, info.Title)
			return
		}
		fmt.Println(info.Title)
	})
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// openFavorites reads favorites from the SQLite store when configured. The
// preferences backend lives inside the GUI app, so it is not visible here.
func openFavorites(cfg *config.Config) *favorites.Manager {
	if cfg.FavoritesBackend != config.BackendSQLite {
		return favorites.Load(nil)
	}
	db, err := favorites.OpenSQLite(cfg.Dir())
	if err != nil {
		logger.Warnf("favorites database: %v", err)
		return favorites.Load(nil)
	}
	defer db.Close()
	return favorites.Load(db)
}

func findStation(stations []catalog.Station, key string) (catalog.Station, bool) {
	for _, st := range stations {
		if st.ID == key {
			return st, true
		}
	}
	for _, st := range stations {
		if strings.EqualFold(st.Name, key) {
			return st, true
		}
	}
	return catalog.Station{}, false
}
