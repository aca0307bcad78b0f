// Command createadmin provisions an admin account. Admin accounts are never
// created through the HTTP API; an operator runs this against the database
// directly. Submitting an existing email resets that account's password.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq" // import postgres driver
	"github.com/modo-agency/web/service/userService"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var logError = log.New(os.Stderr, "ERROR: ", log.Ltime)

func readPassword() (string, error) {
	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}

	fmt.Print("Confirm password: ")
	confirmation, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}

	if string(password) != string(confirmation) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}
	return string(password), nil
}

func main() {
	configPath := flag.String("config", "configs/config.json", "config file path")
	email := flag.String("email", "", "admin email")
	name := flag.String("name", "", "admin display name")
	flag.Parse()

	if *email == "" || *name == "" {
		logError.Fatal("both -email and -name must be set")
	}

	viper.SetConfigFile(*configPath)
	viper.AutomaticEnv()
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", "5432")
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("No config file loaded, relying on env and defaults: %s", err)
	}

	connString := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		viper.GetString("db_host"), viper.GetString("db_port"), viper.GetString("db_user"),
		viper.GetString("db_password"), viper.GetString("db_name"))
	db, err := sql.Open("postgres", connString)
	if err != nil {
		logError.Fatalf("Error opening database: %s", err)
	}
	defer db.Close()
	if err = db.Ping(); err != nil {
		logError.Fatalf("Invalid data source: %s", err)
	}

	password, err := readPassword()
	if err != nil {
		logError.Fatalf("Error reading password: %s", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logError.Fatalf("Error hashing password: %s", err)
	}

	admin, err := userService.Save(db, *email, *name, string(passwordHash))
	if err != nil {
		logError.Fatalf("Error saving admin account: %s", err)
	}

	fmt.Printf("Admin account ready: %s (%s)\n", admin.Email, admin.ID)
}
