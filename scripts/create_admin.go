package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"event-feedback-server/models"
	"event-feedback-server/storage"

	"golang.org/x/crypto/bcrypt"
)

// Seeds (or promotes) the panel admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD. Run once against a fresh database.
func main() {
	storage.InitializeDB()

	email := strings.ToLower(os.Getenv("ADMIN_EMAIL"))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	var user models.User
	found := storage.DB.Where("email = ?", email).Limit(1).Find(&user)
	if found.Error != nil {
		log.Fatalf("lookup failed: %v", found.Error)
	}

	if found.RowsAffected > 0 {
		user.Role = "admin"
		if err := storage.DB.Save(&user).Error; err != nil {
			log.Fatalf("promote failed: %v", err)
		}
		fmt.Println("Existing user promoted to admin:", email)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash failed: %v", err)
	}
	user = models.User{
		FirstName: "Panel",
		LastName:  "Admin",
		Email:     email,
		Password:  string(hashed),
		Role:      "admin",
	}
	if err := storage.DB.Create(&user).Error; err != nil {
		log.Fatalf("create failed: %v", err)
	}
	fmt.Println("Admin user created:", email)
}
