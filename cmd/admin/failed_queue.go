package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	redisclient "github.com/campusdining/dininghours/internal/infra/redis"
)

// Lists or clears the failed-location report queue.
func main() {
	clear := flag.Bool("clear", false, "Clear the queue after listing")
	flag.Parse()

	_ = godotenv.Load()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	client, err := redisclient.NewClient(redisclient.Config{URL: url})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	ctx := context.Background()
	queue := redisclient.NewFailedLocationQueue(client)

	reports, err := queue.GetAll(ctx)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%d failed-location report(s)\n", len(reports))
	for _, r := range reports {
		fmt.Printf("  %s  run=%s id=%q name=%q\n",
			time.Unix(r.ReportedAt, 0).Format(time.RFC3339), r.RunID, r.ID, r.Name)
	}

	if *clear {
		if err := queue.Clear(ctx); err != nil {
			panic(err)
		}
		fmt.Println("Queue cleared")
	}
}
