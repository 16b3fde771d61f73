package config // package config loads application configuration from environment variables

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	SeatLayout     []SeatRow
}

// SeatRow is one row of the deployment seat layout: a row letter, how
// many seats it holds and the seat type shared by the whole row.
type SeatRow struct {
	Label string
	Count int
	Type  string
}

// DefaultSeatLayout mirrors the venue this application was built for:
// five standard rows of 19 seats and one VIP row of 9.
const DefaultSeatLayout = "A:19,B:19,C:19,D:19,E:19,P:9:VIP"

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	layout, err := ParseSeatLayout(envDefault("SEAT_LAYOUT", DefaultSeatLayout))
	if err != nil {
		log.Fatalf("invalid SEAT_LAYOUT: %v", err)
	}
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		SeatLayout:     layout,
	}
}

// ParseSeatLayout parses a layout spec of the form
// "A:19,B:19,P:9:VIP" into its rows.  Each entry is LABEL:COUNT with an
// optional :TYPE suffix; the type defaults to STANDARD.  Labels are
// upper-cased and must be unique, counts must be positive.
func ParseSeatLayout(spec string) ([]SeatRow, error) {
	entries := strings.Split(spec, ",")
	rows := make([]SeatRow, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("bad entry %q", entry)
		}
		label := strings.ToUpper(strings.TrimSpace(parts[0]))
		if label == "" {
			return nil, fmt.Errorf("bad entry %q: empty row label", entry)
		}
		if seen[label] {
			return nil, fmt.Errorf("duplicate row %q", label)
		}
		seen[label] = true
		count, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("bad entry %q: count must be a positive integer", entry)
		}
		seatType := "STANDARD"
		if len(parts) == 3 {
			seatType = strings.ToUpper(strings.TrimSpace(parts[2]))
			if seatType != "STANDARD" && seatType != "VIP" {
				return nil, fmt.Errorf("bad entry %q: unknown seat type %q", entry, seatType)
			}
		}
		rows = append(rows, SeatRow{Label: label, Count: count, Type: seatType})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("layout is empty")
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	return rows, nil
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
