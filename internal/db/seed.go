package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	seedNames   = []string{"Алекс", "Маша", "Дима", "Катя", "Илья", "Аня", "Саша", "Оля", "Миша", "Лена"}
	seedGenders = []string{"Мужской", "Женский"}
	seedBios    = []string{"Люблю кофе и настолки", "Ищу компанию на концерты", "Бегаю по утрам", "Учу японский"}
)

// SeedDemoData populates an empty store with demo profiles and a few
// likes so a fresh deployment has something to browse.
//
// Behavior:
//  1. Does nothing when profiles already exist.
//  2. Creates `n` complete profiles with ids starting at baseID.
//  3. Adds random one-way likes; every 3rd pair is made mutual and matched.
func SeedDemoData(db *gorm.DB, baseID int64, n int) error {
	var existing int64
	if err := db.Model(&Profile{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to count profiles: %w", err)
	}
	if existing > 0 {
		slog.Info("store not empty, skipping seed", "profiles", existing)
		return nil
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	profiles := make([]Profile, 0, n)
	for i := 0; i < n; i++ {
		id := baseID + int64(i)
		profiles = append(profiles, Profile{
			UserID:       id,
			Username:     fmt.Sprintf("demo_user%d", i+1),
			Gender:       seedGenders[i%len(seedGenders)],
			DisplayName:  seedNames[i%len(seedNames)],
			Age:          16 + r.Intn(10),
			Course:       fmt.Sprintf("%d", 1+r.Intn(5)),
			Bio:          seedBios[r.Intn(len(seedBios))],
			PhotoRef:     fmt.Sprintf("demo-photo-%d", i+1),
			LastActiveAt: now.Add(-time.Duration(r.Intn(500)) * time.Hour),
		})
	}
	if err := db.Create(&profiles).Error; err != nil {
		return fmt.Errorf("failed to seed profiles: %w", err)
	}
	slog.Info("seeded profiles", "count", len(profiles))

	counter := 0
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			liker := baseID + int64(i)
			liked := baseID + int64(r.Intn(n))
			if liker == liked {
				continue
			}

			if err := db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&Like{LikerID: liker, LikedID: liked}).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}

			// guarantee a mutual like every 3rd pair
			if counter%3 == 0 {
				db.Clauses(clause.OnConflict{DoNothing: true}).
					Create(&Like{LikerID: liked, LikedID: liker})
				lo, hi := liker, liked
				if lo > hi {
					lo, hi = hi, lo
				}
				db.Clauses(clause.OnConflict{DoNothing: true}).
					Create(&Match{UserLowID: lo, UserHighID: hi})
			}
			counter++
		}
	}

	return nil
}
