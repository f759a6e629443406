package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"github.com/davem/rfpdesk/internal/compare"
	"github.com/davem/rfpdesk/internal/config"
	"github.com/davem/rfpdesk/internal/db"
)

func main() {
	rfpID := flag.String("rfp", "", "RFP ID to compare proposals for")
	vendors := flag.String("vendors", "", "Optional comma-separated vendor emails to restrict the comparison")
	flag.Parse()

	if *rfpID == "" {
		log.Fatal("Please provide an RFP ID using -rfp flag")
	}

	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found, using environment as-is")
	}

	cfg := config.Load()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	var vendorEmails []string
	for _, v := range strings.Split(*vendors, ",") {
		if v = strings.TrimSpace(v); v != "" {
			vendorEmails = append(vendorEmails, v)
		}
	}

	comparator := compare.NewComparator(db.NewStore(pool))
	result, err := comparator.Compare(ctx, *rfpID, vendorEmails)
	if err != nil {
		log.Fatalf("Comparison failed: %v", err)
	}

	log.Printf("RFP %s %q: %d proposal(s) compared", result.RFP.ID, result.RFP.Title, len(result.Vendors))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Rank", "Vendor", "Email", "Price", "Delivery", "Warranty", "Items", "Total"})

	for i, v := range result.Vendors {
		t.AppendRow(table.Row{
			i + 1, v.VendorName, v.VendorEmail,
			v.Scores.PriceScore, v.Scores.DeliveryScore,
			v.Scores.WarrantyScore, v.Scores.ItemScore,
			v.TotalScore,
		})
	}
	t.Render()

	if result.BestVendor != nil {
		log.Printf("Best vendor: %s (%s) with score %.2f",
			result.BestVendor.VendorName, result.BestVendor.VendorEmail, result.BestVendor.TotalScore)
	}
}
