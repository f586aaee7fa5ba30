package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedRegions = []string{"서울", "경기", "인천", "부산", "대전"}

// SeedTestData resets the database and populates it with demo accounts.
//
// Behavior:
//  1. Clears all domain tables.
//  2. Creates 20 users (10 male, 10 female) with profiles and
//     preferences, plus an admin account (kakao id "admin-1",
//     password "admin1234").
//  3. Creates a handful of likes, one mutual pair with a pending match
//     and a payment intent attached.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Fresh start, children first
	for _, table := range []string{
		"admin_actions", "payments", "matches", "likes",
		"recommendations", "exposure_log", "preferences", "profiles", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	// Admin account
	hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := User{
		KakaoUserID:  "admin-1",
		Role:         RoleAdmin,
		PasswordHash: string(hash),
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	// 20 users: 1-10 male, 11-20 female, everyone open to ages 20-45
	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		gender, target := "M", "F"
		if i > 10 {
			gender, target = "F", "M"
		}
		region := seedRegions[r.Intn(len(seedRegions))]

		user := User{
			KakaoUserID:   fmt.Sprintf("kakao-%d", i),
			PhoneVerified: true,
			Role:          RoleUser,
			Profile: &Profile{
				Nickname:  fmt.Sprintf("회원%d", i),
				Gender:    gender,
				BirthYear: 1985 + r.Intn(20),
				Height:    155 + r.Intn(35),
				Region:    region,
				Job:       "직장인",
				Intro:     fmt.Sprintf("안녕하세요, %s에 사는 회원%d입니다. 잘 부탁드려요!", region, i),
				Photos:    []string{fmt.Sprintf("photos/user%d-1.jpg", i), fmt.Sprintf("photos/user%d-2.jpg", i)},
				Visible:   DefaultVisibility(),
			},
			Preferences: &Preferences{
				TargetGender: target,
				AgeMin:       20,
				AgeMax:       45,
				Regions:      []string{region},
			},
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, user)
	}
	log.Println("Seeded 20 users.")

	// Likes within the current ISO week; users[0] and users[10] are a
	// guaranteed mutual pair.
	year, isoWeek := time.Now().ISOWeek()
	batchWeek := fmt.Sprintf("%04d-W%02d", year, isoWeek)

	likes := []Like{
		{FromUser: users[0].ID, ToUser: users[10].ID, BatchWeek: batchWeek},
		{FromUser: users[10].ID, ToUser: users[0].ID, BatchWeek: batchWeek},
		{FromUser: users[1].ID, ToUser: users[11].ID, BatchWeek: batchWeek},
		{FromUser: users[12].ID, ToUser: users[2].ID, BatchWeek: batchWeek},
	}
	for _, like := range likes {
		if err := db.Create(&like).Error; err != nil {
			return fmt.Errorf("failed to seed like: %w", err)
		}
	}

	// The mutual pair gets a pending match with a payment intent
	a, b := users[0].ID, users[10].ID
	if a.String() > b.String() {
		a, b = b, a
	}
	match := Match{UserA: a, UserB: b, Status: MatchPending}
	if err := db.Create(&match).Error; err != nil {
		return fmt.Errorf("failed to seed match: %w", err)
	}
	payment := Payment{
		MatchID: match.ID,
		Method:  PaymentMethodTransfer,
		Amount:  10000,
		Code:    fmt.Sprintf("KM-%s-%03d", a.String()[:4], r.Intn(1000)),
	}
	if err := db.Create(&payment).Error; err != nil {
		return fmt.Errorf("failed to seed payment: %w", err)
	}

	log.Println("Seeding completed.")
	return nil
}
