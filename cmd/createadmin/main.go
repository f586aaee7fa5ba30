// Command createadmin bootstraps an admin account for the operator
// panel. The kakao id and password come from flags; an existing account
// with the same kakao id is promoted and gets a new password.
package main

import (
	"context"
	"flag"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/shhmatch/backend/internal/config"
	"github.com/shhmatch/backend/internal/db"
	"github.com/shhmatch/backend/internal/errors"
	"github.com/shhmatch/backend/internal/repository"
)

func main() {
	kakaoID := flag.String("kakao-id", "", "kakao user id of the admin account")
	password := flag.String("password", "", "admin panel password")
	flag.Parse()

	if *kakaoID == "" || *password == "" {
		log.Fatal("both -kakao-id and -password are required")
	}
	if len(*password) < 8 {
		log.Fatal("password must be at least 8 characters")
	}

	cfg := config.New()
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(database)

	user, err := userRepo.GetByKakaoID(ctx, *kakaoID)
	switch {
	case err == nil:
		user.Role = db.RoleAdmin
		user.PasswordHash = string(hash)
		if err := database.WithContext(ctx).Save(user).Error; err != nil {
			log.Fatalf("failed to promote user: %v", err)
		}
		log.Printf("promoted existing user %s to admin", user.ID)

	case errors.IsNotFound(err):
		user = &db.User{
			KakaoUserID:  *kakaoID,
			Role:         db.RoleAdmin,
			PasswordHash: string(hash),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("failed to create admin: %v", err)
		}
		log.Printf("created admin %s", user.ID)

	default:
		log.Fatalf("failed to look up user: %v", err)
	}
}
