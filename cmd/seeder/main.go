// Demo-data seeder: inserts a few movies and shows so a fresh install
// has something to book against.
package main

import (
	"context"
	"log"
	"time"

	mongoadapter "github.com/movietix/backend/internal/adapters/mongo"
	"github.com/movietix/backend/internal/config"
	"github.com/movietix/backend/internal/domain"
	"github.com/movietix/backend/internal/observability"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.NewLogger()

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer client.Disconnect(context.Background())
	catalog := mongoadapter.NewCatalogRepository(client.Database(cfg.MongoDatabase), logger)

	ctx := context.Background()

	movies := []struct {
		title    string
		desc     string
		duration int
		rating   string
		genre    []string
	}{
		{"Alien", "In space no one can hear you scream.", 117, "R", []string{"horror", "sci-fi"}},
		{"Paddington 2", "A charming bear hunts for the perfect present.", 103, "PG", []string{"family", "comedy"}},
		{"Heat", "A crew of career criminals against one relentless detective.", 170, "R", []string{"crime", "thriller"}},
	}

	screens := []string{"Screen 1", "Screen 2", "IMAX"}

	for i, m := range movies {
		movie, err := domain.NewMovie(m.title, m.desc, m.duration, m.rating, "", m.genre)
		if err != nil {
			log.Fatalf("seed movie %q: %v", m.title, err)
		}
		if err := catalog.CreateMovie(ctx, movie); err != nil {
			log.Fatalf("seed movie %q: %v", m.title, err)
		}
		logger.WithField("movie_id", movie.ID).Info("seeded movie " + m.title)

		for day := 1; day <= 2; day++ {
			start := time.Now().AddDate(0, 0, day).Truncate(time.Hour)
			show, err := domain.NewShow(movie.ID, start, screens[i%len(screens)], 1250, 8, 12)
			if err != nil {
				log.Fatalf("seed show for %q: %v", m.title, err)
			}
			if err := catalog.CreateShow(ctx, show); err != nil {
				log.Fatalf("seed show for %q: %v", m.title, err)
			}
			logger.WithField("show_id", show.ID).Info("seeded show")
		}
	}
}
