package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	u := strings.TrimRight(strings.TrimSpace(*baseURL), "/") + "/admin/v1/state"
	cl := &http.Client{Timeout: 5 * time.Second}
	resp, err := cl.Get(u)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(string(b))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}

// settingsCmd reads the settings, or changes them when -active or -color is
// given.
func settingsCmd(args []string) {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	active := fs.String("active", "", "true or false (optional)")
	color := fs.String("color", "", "word color RRGGBB (optional)")
	_ = fs.Parse(args)

	body, err := settingsBody(*active, *color)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	u := strings.TrimRight(strings.TrimSpace(*baseURL), "/") + "/v1/settings"
	method := http.MethodGet
	var rd io.Reader
	if body != nil {
		method = http.MethodPut
		rd = bytes.NewReader(body)
	}
	req, _ := http.NewRequest(method, u, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	cl := &http.Client{Timeout: 10 * time.Second}
	resp, err := cl.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(strings.TrimSpace(string(b)))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}

// settingsBody returns nil when nothing is to be changed.
func settingsBody(active, color string) ([]byte, error) {
	m := map[string]any{}
	switch strings.ToLower(strings.TrimSpace(active)) {
	case "":
	case "true", "on", "1":
		m["active"] = true
	case "false", "off", "0":
		m["active"] = false
	default:
		return nil, fmt.Errorf("bad -active %q", active)
	}
	if c := strings.TrimSpace(color); c != "" {
		m["word_color"] = c
	}
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}
