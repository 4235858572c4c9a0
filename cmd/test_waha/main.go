package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

// Smoke test for the WAHA gateway. Sends a single message so reminder
// delivery can be verified against a real session before scheduling
// batches.
func main() {
	phone := flag.String("phone", "", "Phone number (e.g. 03001234567 or 923001234567)")
	msg := flag.String("msg", "Test message from the fee reminder service", "Message body")
	flag.Parse()

	if *phone == "" {
		log.Fatal("Please provide a phone number using -phone flag")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found")
	}

	service := services.NewWahaService()

	chatId := services.NormalizeChatID(*phone)
	log.Printf("Sending message to %s: %s", chatId, *msg)

	if err := service.SendMessage(*phone, *msg); err != nil {
		log.Fatalf("Failed to send message: %v", err)
	}

	log.Println("Message sent successfully!")
}
