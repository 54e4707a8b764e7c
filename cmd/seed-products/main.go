package main

import (
	"fmt"
	"os"

	"ecommerce-platform/internal/config"
	"ecommerce-platform/internal/database"
	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/repositories"
)

var samples = []models.ProductCreateRequest{
	{Title: "Mechanical Keyboard", Description: "Tenkeyless, brown switches", Code: "KB-TKL-01", Price: 8999, Stock: 40, Category: "peripherals"},
	{Title: "Wireless Mouse", Description: "Ergonomic, 6 buttons", Code: "MS-ERG-02", Price: 3499, Stock: 120, Category: "peripherals"},
	{Title: "27\" Monitor", Description: "1440p IPS panel", Code: "MN-27Q-01", Price: 27999, Stock: 15, Category: "displays"},
	{Title: "USB-C Dock", Description: "Dual display, 100W passthrough", Code: "DK-UC-03", Price: 15999, Stock: 25, Category: "accessories"},
	{Title: "Laptop Stand", Description: "Aluminium, adjustable height", Code: "ST-AL-01", Price: 4299, Stock: 60, Category: "accessories"},
	{Title: "Webcam", Description: "1080p with privacy shutter", Code: "WC-FHD-02", Price: 5999, Stock: 0, Category: "peripherals"},
	{Title: "Headset", Description: "Closed back, boom microphone", Code: "HS-CB-01", Price: 7499, Stock: 35, Category: "audio"},
	{Title: "Desk Mat", Description: "900x400mm, stitched edges", Code: "DM-XL-01", Price: 1999, Stock: 200, Category: "accessories"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(database.Config{Path: cfg.Database.Path})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	repo := repositories.NewProductRepository(db.DB)
	created := 0
	for i := range samples {
		req := samples[i]
		if _, err := repo.GetByCode(req.Code); err == nil {
			continue // already seeded
		}
		if _, err := repo.Create(&req); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed %s: %v\n", req.Code, err)
			os.Exit(1)
		}
		created++
	}

	fmt.Printf("seeded %d products\n", created)
}
