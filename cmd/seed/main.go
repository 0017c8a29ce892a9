package main

import (
	"log"
	"os"
	"time"

	"fundi/internal/database"
	"fundi/internal/domain"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "fundi.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM reviews")
	db.Exec("DELETE FROM payments")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM fundis")
	db.Exec("DELETE FROM services")
	db.Exec("DELETE FROM users")

	// ================== USERS ==================
	log.Println("Creating users...")

	admin := domain.User{
		Email:        "admin@fundi.ke",
		PasswordHash: hash("admin123"),
		Name:         "Admin",
		Role:         domain.RoleAdmin,
	}
	customer := domain.User{
		Email:        "wanjiku@example.com",
		PasswordHash: hash("customer123"),
		Name:         "Wanjiku Kamau",
		PhoneNumber:  "0712345678",
		Address:      "Moi Avenue 12, Nairobi",
		Role:         domain.RoleCustomer,
	}
	plumberUser := domain.User{
		Email:        "otieno@example.com",
		PasswordHash: hash("fundi123"),
		Name:         "Otieno Odhiambo",
		PhoneNumber:  "0722000111",
		Role:         domain.RoleFundi,
	}
	electricianUser := domain.User{
		Email:        "njeri@example.com",
		PasswordHash: hash("fundi123"),
		Name:         "Njeri Mwangi",
		PhoneNumber:  "0733000222",
		Role:         domain.RoleFundi,
	}
	for _, u := range []*domain.User{&admin, &customer, &plumberUser, &electricianUser} {
		if err := db.Create(u).Error; err != nil {
			log.Fatal("seed user failed:", err)
		}
	}

	// ================== SERVICES ==================
	log.Println("Creating services...")

	pipeRepair := domain.Service{Name: "Pipe repair", Category: domain.CategoryPlumber, Description: "Leak detection and pipe replacement"}
	wiring := domain.Service{Name: "House wiring", Category: domain.CategoryElectrician, Description: "New wiring and socket installation"}
	deepClean := domain.Service{Name: "Deep cleaning", Category: domain.CategoryCleaner, Description: "Full house deep clean"}
	for _, s := range []*domain.Service{&pipeRepair, &wiring, &deepClean} {
		if err := db.Create(s).Error; err != nil {
			log.Fatal("seed service failed:", err)
		}
	}

	// ================== FUNDIS ==================
	log.Println("Creating fundi profiles...")

	plumber := domain.Fundi{
		UserID:          plumberUser.ID,
		Category:        domain.CategoryPlumber,
		ExperienceYears: 8,
		HourlyRate:      decimal.NewFromInt(500),
		Bio:             "Licensed plumber covering Nairobi and Kiambu",
		IsAvailable:     true,
	}
	electrician := domain.Fundi{
		UserID:          electricianUser.ID,
		Category:        domain.CategoryElectrician,
		ExperienceYears: 5,
		HourlyRate:      decimal.RequireFromString("750.50"),
		Bio:             "Certified electrician, emergency callouts welcome",
		IsAvailable:     true,
	}
	for _, f := range []*domain.Fundi{&plumber, &electrician} {
		if err := db.Create(f).Error; err != nil {
			log.Fatal("seed fundi failed:", err)
		}
	}

	// ================== BOOKINGS ==================
	log.Println("Creating bookings...")

	upcoming := domain.Booking{
		CustomerID:     customer.ID,
		FundiID:        plumber.ID,
		ServiceID:      pipeRepair.ID,
		Description:    "Kitchen sink leaking under the counter",
		Address:        customer.Address,
		BookingDate:    time.Now().Add(72 * time.Hour),
		EstimatedHours: 2,
		HourlyRate:     plumber.HourlyRate,
		Status:         domain.BookingPending,
	}
	finished := domain.Booking{
		CustomerID:     customer.ID,
		FundiID:        electrician.ID,
		ServiceID:      wiring.ID,
		Description:    "Replace burnt socket in the living room",
		Address:        customer.Address,
		BookingDate:    time.Now().Add(-48 * time.Hour),
		EstimatedHours: 3,
		HourlyRate:     electrician.HourlyRate,
		Status:         domain.BookingCompleted,
	}
	for _, b := range []*domain.Booking{&upcoming, &finished} {
		if err := db.Create(b).Error; err != nil {
			log.Fatal("seed booking failed:", err)
		}
	}

	// A settled cash payment so the dashboard has non-zero counters.
	completedAt := time.Now().Add(-47 * time.Hour)
	paid := domain.Payment{
		BookingID:     finished.ID,
		Amount:        finished.TotalCost(),
		Status:        domain.PaymentCompleted,
		Method:        domain.MethodCash,
		TransactionID: "CASH-" + uuid.NewString(),
		CompletedAt:   &completedAt,
	}
	if err := db.Create(&paid).Error; err != nil {
		log.Fatal("seed payment failed:", err)
	}

	review := domain.Review{
		BookingID: finished.ID,
		Rating:    5,
		Comment:   "Fast and tidy, highly recommended",
	}
	if err := db.Create(&review).Error; err != nil {
		log.Fatal("seed review failed:", err)
	}

	log.Println("Seed complete.")
	log.Println("  admin:    admin@fundi.ke / admin123")
	log.Println("  customer: wanjiku@example.com / customer123")
	log.Println("  fundis:   otieno@example.com, njeri@example.com / fundi123")
}

func hash(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("bcrypt failed:", err)
	}
	return string(h)
}
