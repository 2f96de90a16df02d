package seeders

import (
	"log"

	"waste-logistics/models/site"

	"gorm.io/gorm"
)

func strPtr(s string) *string {
	return &s
}

func SeedSites(db *gorm.DB) {
	log.Printf("🔍 Checking operating sites data integrity...")

	sites := []site.Site{
		{Code: "VAL", Name: "Valinhos", Address: "Rod. Anhanguera km 82", City: strPtr("Valinhos"), IsActive: true},
		{Code: "CPQ", Name: "Campinas", Address: "Av. das Amoreiras 1200", City: strPtr("Campinas"), IsActive: true},
		{Code: "JUN", Name: "Jundiaí", Address: "Rua Quinze de Novembro 330", City: strPtr("Jundiaí"), IsActive: true},
	}

	var existingCodes []string
	if err := db.Model(&site.Site{}).Pluck("code", &existingCodes).Error; err != nil {
		log.Printf("❌ Failed to fetch existing site codes: %v", err)
		return
	}

	existingCodesMap := make(map[string]bool)
	for _, code := range existingCodes {
		existingCodesMap[code] = true
	}

	var missingSites []site.Site
	for _, s := range sites {
		if !existingCodesMap[s.Code] {
			missingSites = append(missingSites, s)
		}
	}

	if len(missingSites) == 0 {
		log.Printf("✅ All operating sites are already present. No seeding needed.")
		return
	}

	log.Printf("🌱 Seeding %d missing operating sites...", len(missingSites))

	for _, s := range missingSites {
		if err := db.Create(&s).Error; err != nil {
			log.Printf("❌ Failed to seed site %s (%s): %v", s.Name, s.Code, err)
		} else {
			log.Printf("✅ Added: %s (%s)", s.Name, s.Code)
		}
	}

	var finalCount int64
	if err := db.Model(&site.Site{}).Count(&finalCount).Error; err == nil {
		log.Printf("📈 Database now contains %d operating sites", finalCount)
	}
}
