// Command main runs the database seeder for the archives.
package main

import (
	"context"
	"flag"
	"log"

	"archives/internal/config"
	"archives/internal/database"
	"archives/internal/seed"
)

func main() {
	opts := seed.DefaultOptions

	// Parse command line flags
	flag.IntVar(&opts.NumPosts, "posts", opts.NumPosts, "Number of generated posts")
	flag.IntVar(&opts.NumVIPs, "vips", opts.NumVIPs, "Number of guest-list entries")
	flag.IntVar(&opts.CommentsPerMax, "comments", opts.CommentsPerMax, "Maximum comments per post")
	flag.IntVar(&opts.MaxDays, "days", opts.MaxDays, "Spread created_at over this many days")
	flag.BoolVar(&opts.ShouldClean, "clean", opts.ShouldClean, "Clean content tables before seeding")
	flag.Int64Var(&opts.Seed, "seed", 0, "Random seed for reproducible runs")
	fixturesOnly := flag.Bool("fixtures", false, "Insert only the demo posts")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsDemo() {
		log.Fatal("❌ BACKEND_MODE=demo has no database to seed")
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	ctx := context.Background()

	if *fixturesOnly {
		if err := s.Fixtures(ctx); err != nil {
			log.Fatalf("❌ Fixture seeding failed: %v", err)
		}
		log.Println("✨ Demo posts inserted.")
		return
	}

	log.Printf("Target: %d posts, %d vips, clean=%v\n", opts.NumPosts, opts.NumVIPs, opts.ShouldClean)
	res, err := s.Run(ctx, opts)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d posts, %d comments, %d guest-list entries.", res.Posts, res.Comments, res.VIPs)
}
