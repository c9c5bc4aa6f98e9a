package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"golang.org/x/crypto/bcrypt"

	"driveconnect/internal/database"
	"driveconnect/internal/domain"
	"driveconnect/internal/repository"
)

func main() {
	db, err := database.Connect("driveconnect.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM slots")
	db.Exec("DELETE FROM instructors")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	instructors := repository.NewInstructorRepository(db)
	slots := repository.NewSlotRepository(db)

	log.Println("Creating students...")
	studentEmails := []string{"lea@driveconnect.nc", "teva@driveconnect.nc", "manon@driveconnect.nc"}
	studentNames := []string{"Léa Martin", "Teva Wright", "Manon Leroy"}
	for i, email := range studentEmails {
		hash, _ := bcrypt.GenerateFromPassword([]byte("student123"), bcrypt.DefaultCost)
		student := domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Name:         studentNames[i],
			Role:         domain.RoleStudent,
		}
		if err := users.Create(ctx, &student); err != nil {
			log.Fatal("student create failed:", err)
		}
	}
	log.Println("Students created (password: student123)")

	log.Println("Creating instructors...")
	type instructorSeed struct {
		email    string
		name     string
		rating   float64
		reviews  int
		rate     int64
		location string
		lat, lng float64
	}
	seeds := []instructorSeed{
		{"jp.moniteur@driveconnect.nc", "Jean-Pierre Kalué", 4.8, 56, 4500, "Nouméa", -22.2758, 166.4580},
		{"marie.auto@driveconnect.nc", "Marie Wamytan", 4.6, 34, 5000, "Dumbéa", -22.1500, 166.4500},
		{"paul.conduite@driveconnect.nc", "Paul Gorodé", 4.5, 21, 4000, "Mont-Dore", -22.2833, 166.5833},
	}

	var profiles []domain.Instructor
	for i, s := range seeds {
		hash, _ := bcrypt.GenerateFromPassword([]byte("instructor123"), bcrypt.DefaultCost)
		user := domain.User{
			Email:        s.email,
			PasswordHash: string(hash),
			Name:         s.name,
			Role:         domain.RoleInstructor,
		}
		if err := users.Create(ctx, &user); err != nil {
			log.Fatal("instructor user create failed:", err)
		}

		profile := domain.Instructor{
			UserID:       user.ID,
			Rating:       s.rating,
			TotalReviews: s.reviews,
			Experience:   5 + 3*i,
			Location:     s.location,
			HourlyRate:   s.rate,
			IsOnline:     i%2 == 0,
			Lat:          s.lat,
			Lng:          s.lng,
			Verified:     true,
		}
		if err := instructors.Create(ctx, &profile); err != nil {
			log.Fatal("instructor profile create failed:", err)
		}
		profiles = append(profiles, profile)
	}
	log.Println("Instructors created (password: instructor123)")

	log.Println("Creating slots for the next two weeks...")
	hours := []string{"08:00", "10:00", "14:00", "16:00"}
	count := 0
	for day := 1; day <= 14; day++ {
		date := time.Now().AddDate(0, 0, day).Format(domain.SlotDateLayout)
		for i, p := range profiles {
			for j, h := range hours {
				// each instructor publishes two of the four start times per day
				if (i+j+day)%2 != 0 {
					continue
				}
				duration := 1.0
				if j%2 == 1 {
					duration = 2.0
				}
				s := domain.Slot{
					InstructorID: p.ID,
					Date:         date,
					Time:         h,
					Duration:     duration,
					Price:        int64(math.Round(float64(p.HourlyRate) * duration)),
					Available:    true,
				}
				if err := slots.Create(ctx, &s); err != nil {
					log.Fatal("slot create failed:", err)
				}
				count++
			}
		}
	}

	fmt.Printf("Seed complete: %d students, %d instructors, %d slots\n", len(studentEmails), len(profiles), count)
}
