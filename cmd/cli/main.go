package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "property":
		handleProperty(args)
	case "lease":
		handleLease(args)
	case "payment":
		handlePayment(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: rentease auth <register|login|logout|who>")
		return
	}

	switch args[0] {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", args[0])
	}
}

func handleProperty(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: rentease property <list|create>")
		return
	}

	switch args[0] {
	case "list":
		listProperties()
	case "create":
		createProperty(args[1:])
	default:
		fmt.Printf("unknown property command: %s\n", args[0])
	}
}

func handleLease(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: rentease lease <list|create|end|activate>")
		return
	}

	switch args[0] {
	case "list":
		listLeases()
	case "create":
		createLease(args[1:])
	case "end":
		endLease(args[1:])
	case "activate":
		activateLease(args[1:])
	default:
		fmt.Printf("unknown lease command: %s\n", args[0])
	}
}

func handlePayment(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: rentease payment <list|recurring|stats>")
		return
	}

	switch args[0] {
	case "list":
		listPayments(args[1:])
	case "recurring":
		generateRecurring(args[1:])
	case "stats":
		paymentStats()
	default:
		fmt.Printf("unknown payment command: %s\n", args[0])
	}
}

// Auth commands
func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	role := fs.String("role", "tenant", "role (admin, owner, tenant)")

	fs.Parse(args)

	if *email == "" || *username == "" || *password == "" {
		fmt.Println("Error: email, username, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"email":      *email,
		"username":   *username,
		"password":   *password,
		"first_name": *firstName,
		"last_name":  *lastName,
		"role":       *role,
	}

	result, status, err := post("/auth/register", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 201 {
		fmt.Printf("✓ User registered: %s\n", *email)
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	result, status, err := post("/auth/login", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		if token, ok := result["access_token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	result, status, err := get("/users/me")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != 200 {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in as %v (%v)\n", result["email"], result["role"])
}

// Property commands
func listProperties() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/properties", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var properties []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&properties)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tADDRESS\tPRICE")
	for _, p := range properties {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", p["id"], p["title"], p["address"], p["price"])
	}
	w.Flush()
}

func createProperty(args []string) {
	fs := flag.NewFlagSet("property create", flag.ExitOnError)
	title := fs.String("title", "", "property title")
	address := fs.String("address", "", "street address")
	price := fs.String("price", "0", "property price")

	fs.Parse(args)

	if *title == "" {
		fmt.Println("Error: title is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"title": *title, "address": *address, "price": *price}
	result, status, err := post("/properties", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 201 {
		fmt.Printf("✓ Property created: %v\n", result["id"])
	} else {
		fmt.Printf("✗ Create failed: %v\n", result)
	}
}

// Lease commands
func listLeases() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/leases", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var leases []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&leases)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUNIT\tTENANT\tSTART\tEND\tACTIVE")
	for _, l := range leases {
		end := l["end_date"]
		if end == nil {
			end = "(ongoing)"
		}
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\n",
			l["id"], l["unit_id"], l["tenant_id"], l["start_date"], end, l["is_active"])
	}
	w.Flush()
}

func createLease(args []string) {
	fs := flag.NewFlagSet("lease create", flag.ExitOnError)
	unitID := fs.Int64("unit", 0, "unit ID")
	tenantID := fs.Int64("tenant", 0, "tenant user ID")
	start := fs.String("start", "", "start date (YYYY-MM-DD)")
	end := fs.String("end", "", "end date (YYYY-MM-DD), omit for open-ended")

	fs.Parse(args)

	if *unitID == 0 || *tenantID == 0 || *start == "" {
		fmt.Println("Error: unit, tenant, and start are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{
		"unit_id":    *unitID,
		"tenant_id":  *tenantID,
		"start_date": *start,
	}
	if *end != "" {
		payload["end_date"] = *end
	}

	result, status, err := post("/leases", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 201 {
		fmt.Printf("✓ Lease created: %v\n", result["id"])
	} else {
		fmt.Printf("✗ Create failed: %v\n", result)
	}
}

func endLease(args []string) {
	fs := flag.NewFlagSet("lease end", flag.ExitOnError)
	id := fs.String("id", "", "lease ID")
	end := fs.String("end", "", "end date (YYYY-MM-DD), default today")

	fs.Parse(args)

	if *id == "" {
		fmt.Println("Error: id is required")
		return
	}

	payload := map[string]string{}
	if *end != "" {
		payload["end_date"] = *end
	}

	result, status, err := post("/leases/"+*id+"/end", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Printf("✓ Lease %s ended\n", *id)
	} else {
		fmt.Printf("✗ End failed: %v\n", result)
	}
}

func activateLease(args []string) {
	fs := flag.NewFlagSet("lease activate", flag.ExitOnError)
	id := fs.String("id", "", "lease ID")

	fs.Parse(args)

	if *id == "" {
		fmt.Println("Error: id is required")
		return
	}

	result, status, err := post("/leases/"+*id+"/activate", map[string]string{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 200 {
		fmt.Printf("✓ Lease %s activated\n", *id)
	} else {
		fmt.Printf("✗ Activate failed: %v\n", result)
	}
}

// Payment commands
func listPayments(args []string) {
	fs := flag.NewFlagSet("payment list", flag.ExitOnError)
	unpaid := fs.Bool("unpaid", false, "only unpaid payments")

	fs.Parse(args)

	url := getAPIURL() + "/payments"
	if *unpaid {
		url += "?is_paid=false"
	}

	req, _ := http.NewRequest("GET", url, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var payments []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&payments)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tAMOUNT\tDUE\tSTATUS")
	for _, p := range payments {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n",
			p["id"], p["document_type"], p["gross_value"], p["due_date"], p["status"])
	}
	w.Flush()
}

func generateRecurring(args []string) {
	fs := flag.NewFlagSet("payment recurring", flag.ExitOnError)
	leaseID := fs.Int64("lease", 0, "lease ID")
	frequency := fs.String("frequency", "monthly", "frequency (monthly, quarterly, yearly)")
	dueDay := fs.Int("due-day", 1, "day of month payments are due")
	total := fs.String("total", "", "total amount to split across the series")

	fs.Parse(args)

	if *leaseID == 0 || *total == "" {
		fmt.Println("Error: lease and total are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{
		"lease_id":     *leaseID,
		"frequency":    *frequency,
		"due_day":      *dueDay,
		"total_amount": *total,
	}

	result, status, err := post("/payments/recurring", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status == 201 {
		fmt.Printf("✓ Generated %v payments\n", result["count"])
	} else {
		fmt.Printf("✗ Generation failed: %v\n", result)
	}
}

func paymentStats() {
	result, status, err := get("/payments/statistics")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if status != 200 {
		fmt.Printf("✗ Request failed: %v\n", result)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOTAL\tPAID\tPENDING\tOVERDUE")
	fmt.Fprintf(w, "%v\t%v\t%v\t%v\n",
		result["total_payments"], result["paid_count"], result["pending_count"], result["overdue_count"])
	w.Flush()
}

// Helper functions
func post(path string, payload interface{}) (map[string]interface{}, int, error) {
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode, nil
}

func get(path string) (map[string]interface{}, int, error) {
	req, _ := http.NewRequest("GET", getAPIURL()+path, nil)
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode, nil
}

func getAPIURL() string {
	if url := os.Getenv("RENTEASE_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.rentease/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.rentease", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`RentEase CLI

Usage:
  rentease <command> [options]

Commands:
  auth      User authentication (register, login, logout, who)
  property  Property operations (list, create)
  lease     Lease operations (list, create, end, activate)
  payment   Payment operations (list, recurring, stats)
  help      Show this help message

Environment Variables:
  RENTEASE_API    API endpoint (default: http://localhost:8080/api)

Examples:
  rentease auth register -email owner@example.com -username owner -password secret123 -role owner
  rentease auth login -email owner@example.com -password secret123
  rentease lease create -unit 3 -tenant 7 -start 2026-01-01 -end 2026-12-31
  rentease payment recurring -lease 2 -frequency monthly -due-day 1 -total 12000
`)
}
