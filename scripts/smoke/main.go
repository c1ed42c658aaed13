package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Status   int    `json:"status"`
	Location string `json:"location,omitempty"`
	Critical bool   `json:"critical"`
}

type config struct {
	Targets []target `json:"targets"`
}

type result struct {
	Target   target
	Status   int
	Location string
	Duration time.Duration
	Error    error
}

func (r result) ok() bool {
	if r.Error != nil || r.Status != r.Target.Status {
		return false
	}
	return r.Target.Location == "" || r.Location == r.Target.Location
}

// defaultTargets covers the public pages and the role gate of a freshly seeded instance.
var defaultTargets = []target{
	{Method: http.MethodGet, Path: "/health", Status: http.StatusOK, Critical: true},
	{Method: http.MethodGet, Path: "/ready", Status: http.StatusOK, Critical: true},
	{Method: http.MethodGet, Path: "/", Status: http.StatusOK, Critical: true},
	{Method: http.MethodGet, Path: "/about/", Status: http.StatusOK},
	{Method: http.MethodGet, Path: "/students/", Status: http.StatusOK, Critical: true},
	{Method: http.MethodGet, Path: "/courses/", Status: http.StatusOK, Critical: true},
	{Method: http.MethodGet, Path: "/course/python-basics/", Status: http.StatusOK},
	{Method: http.MethodGet, Path: "/course/no-such-course/", Status: http.StatusNotFound},
	{Method: http.MethodGet, Path: "/feedback/", Status: http.StatusOK},
	{Method: http.MethodGet, Path: "/login/", Status: http.StatusOK},
	{Method: http.MethodGet, Path: "/register/", Status: http.StatusOK},
	{Method: http.MethodGet, Path: "/profile/", Status: http.StatusFound, Location: "/login/?next=%2Fprofile%2F", Critical: true},
	{Method: http.MethodGet, Path: "/dashboard/admin/", Status: http.StatusFound, Location: "/login/?next=%2Fdashboard%2Fadmin%2F", Critical: true},
	{Method: http.MethodGet, Path: "/metrics", Status: http.StatusOK},
}

func main() {
	var (
		base        string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8000", "API base URL")
	flag.StringVar(&targetsPath, "targets", "", "Optional JSON targets file replacing the built-in list")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets := defaultTargets
	if targetsPath != "" {
		loaded, err := loadTargets(targetsPath)
		if err != nil {
			log.Fatalf("failed to load targets: %v", err)
		}
		targets = loaded
	}

	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	var (
		results  []result
		breaking int
		optional int
	)
	for _, t := range targets {
		res := check(client, base, t)
		if !res.ok() {
			if t.Critical {
				breaking++
			} else {
				optional++
			}
		}
		results = append(results, res)
	}

	printReport(results)

	fmt.Printf("Critical failures: %d, Optional failures: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func check(client *http.Client, base string, tgt target) result {
	res := result{Target: tgt}
	if client == nil {
		res.Error = errors.New("nil client")
		return res
	}

	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		res.Error = err
		return res
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		res.Error = err
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	res.Duration = time.Since(start)
	res.Status = resp.StatusCode
	res.Location = resp.Header.Get("Location")
	return res
}

func printReport(results []result) {
	fmt.Println("Smoke Check Report")
	fmt.Println("==================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.ok() {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Status: %d, want %d (%s)\n", res.Status, res.Target.Status, res.Duration)
		if res.Target.Location != "" {
			fmt.Printf("  Location: %q, want %q\n", res.Location, res.Target.Location)
		}
	}
}
