package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

// Exit codes for the viewer application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL  string `env:"CHAT_SERVER_URL,default=http://localhost:8000"`
	RoomID     string `env:"CHAT_ROOM_ID,default=room1"`
	ScenarioID string `env:"CHAT_SCENARIO_ID,default=friend"`
}

type character struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	NameKorean   string `json:"name_korean"`
	Relationship string `json:"relationship"`
}

type nextPartResponse struct {
	Status     string `json:"status"`
	PartNumber int    `json:"partNumber"`
	Messages   []struct {
		Text string `json:"text"`
	} `json:"messages"`
	DialogueEnd bool `json:"dialogueEnd"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Viewer error: %v\n", err)
	}
	os.Exit(code)
}

// run drives an interactive reveal session: print the character table,
// bind a scenario to the room, then advance one part per keypress.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	if err := printCharacters(config.ServerURL); err != nil {
		return exitRuntime, err
	}

	setup := struct {
		Status        string `json:"status"`
		TotalMessages int    `json:"totalMessages"`
	}{}
	url := fmt.Sprintf("%s/rooms/%s/setup-dialogue?scenarioId=%s",
		config.ServerURL, config.RoomID, config.ScenarioID)
	if err := postInto(url, &setup); err != nil {
		return exitRuntime, fmt.Errorf("dialogue setup failed: %w", err)
	}

	color.New(color.FgGreen).Printf("Bound %q to room %q (%d messages). Press Enter to reveal each part.\n",
		config.ScenarioID, config.RoomID, setup.TotalMessages)

	stdin := bufio.NewScanner(os.Stdin)
	for stdin.Scan() {
		var part nextPartResponse
		if err := postInto(fmt.Sprintf("%s/rooms/%s/next-part", config.ServerURL, config.RoomID), &part); err != nil {
			return exitRuntime, err
		}
		if part.Status != "sent" {
			color.New(color.FgYellow).Println("No more messages.")
			return exitOK, nil
		}

		header := fmt.Sprintf("  ====== Part %d ======", part.PartNumber)
		fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))
		for _, msg := range part.Messages {
			fmt.Println(msg.Text)
		}
		if part.DialogueEnd {
			color.New(color.FgYellow).Println("Dialogue ended.")
			return exitOK, nil
		}
	}
	return exitOK, stdin.Err()
}

func printCharacters(serverURL string) error {
	resp, err := http.Get(serverURL + "/characters")
	if err != nil {
		return fmt.Errorf("fetching characters: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Characters []character `json:"characters"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding characters: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Korean", "Relationship"})
	for _, c := range body.Characters {
		table.Append([]string{c.ID, c.Name, c.NameKorean, c.Relationship})
	}
	table.Render()
	return nil
}

func postInto(url string, out any) error {
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server answered %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
