package cli

import (
	"awi/models"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
)

// CLIHttp is the CLI for HTTP client mode
type CLIHttp struct {
	rl      *readline.Instance
	running bool
	client  *Client
}

// NewCLIHttp creates a new HTTP client CLI instance
func NewCLIHttp(serverURL string) (*CLIHttp, error) {
	client := NewClient(serverURL)

	// Test connectivity
	if _, err := client.HealthCheck(); err != nil {
		return nil, fmt.Errorf("cannot connect to server: %v", err)
	}

	// Create readline instance; ignore Ctrl+C
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %v", err)
	}

	return &CLIHttp{
		rl:      rl,
		running: true,
		client:  client,
	}, nil
}

// Start runs the CLI loop
func (c *CLIHttp) Start() {
	defer c.rl.Close()
	c.printWelcome()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				printWarn("\n⚠ Ctrl+C detected. Please use 'exit' or 'quit' command to exit gracefully.")
				continue
			}
			// EOF or other error; exit
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		c.handleCommand(input)
	}
}

// printWelcome prints initial banner
func (c *CLIHttp) printWelcome() {
	PrintBanner("AWI - CLI Mode (HTTP Client)")
	fmt.Printf("\nConnected to: %s\n", c.client.baseURL)
	fmt.Println("Type 'help' for available commands")
}

// handleCommand routes user commands
func (c *CLIHttp) handleCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h", "?":
		c.showHelp()
	case "get", "show":
		c.showSettings(args)
	case "set":
		c.saveSettings(args)
	case "curve":
		c.showCurve(args)
	case "reindex":
		c.reindex(args)
	case "last":
		c.showLastReindex()
	case "health", "status":
		c.showHealth()
	case "metrics":
		c.showMetrics()
	case "logs":
		c.handleLogsCommand(args)
	case "server":
		c.handleServerCommand(args)
	case "clear":
		c.clearScreen()
	case "exit", "quit", "q":
		fmt.Println("\nGoodbye!")
		c.running = false
	default:
		fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
}

// showHelp prints available commands
func (c *CLIHttp) showHelp() {
	fmt.Println()
	PrintBanner("Available Commands")
	fmt.Println()

	commands := [][]string{
		{"help, h, ?", "Show this help message"},
		{"", ""},
		{"STRETCH SETTINGS:", ""},
		{"get [folder]", "Show settings in effect for a folder (default /)"},
		{"set <folder> key=value ...", "Create or update a folder's settings"},
		{"curve [folder] [samples]", "Show the stretch transfer curve"},
		{"", ""},
		{"INDEXING:", ""},
		{"reindex [folder] [--force]", "Reindex a folder and wait for completion"},
		{"last", "Show the latest reindex run"},
		{"", ""},
		{"SYSTEM:", ""},
		{"health", "Show server health"},
		{"metrics", "Show server metrics"},
		{"logs [clear]", "List or clear server error logs"},
		{"server <list|use|add|remove>", "Manage CLI server profiles"},
		{"clear", "Clear screen"},
		{"exit, quit, q", "Exit the program"},
	}

	for _, cmd := range commands {
		if len(cmd) == 2 && cmd[0] != "" {
			fmt.Printf("  %-30s %s\n", cmd[0], cmd[1])
		} else {
			fmt.Println()
		}
	}
	fmt.Println("\n  Keys for set: stretch_type, linear_low_percent, linear_high_percent, stf_shadow_clip,")
	fmt.Println("  stf_highlight_clip, stf_midtones_balance, stf_strength, apply_to_subfolders")
}

func folderArg(args []string) string {
	if len(args) == 0 {
		return "/"
	}
	return args[0]
}

// showSettings prints the resolved settings for a folder
func (c *CLIHttp) showSettings(args []string) {
	res, err := c.client.GetFolderSettings(folderArg(args))
	if err != nil {
		printError(err)
		return
	}

	fmt.Println()
	PrintBanner(fmt.Sprintf("Settings for %s", res.RequestedFolder))
	fmt.Println()
	fmt.Printf("  %-24s %s\n", "Effective folder:", res.EffectiveFolder)
	if res.Message != "" {
		printDim("  %-24s %s", "Note:", res.Message)
	}
	printSettings(res.Settings)
}

func printSettings(s models.FolderStretchSettings) {
	fmt.Printf("  %-24s %s\n", "Stretch type:", s.StretchType)
	fmt.Printf("  %-24s %g\n", "Linear low %:", s.LinearLowPercent)
	fmt.Printf("  %-24s %g\n", "Linear high %:", s.LinearHighPercent)
	fmt.Printf("  %-24s %g\n", "STF shadow clip:", s.STFShadowClip)
	fmt.Printf("  %-24s %g\n", "STF highlight clip:", s.STFHighlightClip)
	fmt.Printf("  %-24s %g\n", "STF midtones balance:", s.STFMidtonesBalance)
	fmt.Printf("  %-24s %g\n", "STF strength:", s.STFStrength)
	fmt.Printf("  %-24s %t\n", "Apply to subfolders:", s.ApplyToSubfolders)
}

// saveSettings sends a settings upsert built from key=value args
func (c *CLIHttp) saveSettings(args []string) {
	if len(args) < 1 {
		usage("set <folder> key=value ...")
		return
	}

	payload, err := parseSetArgs(args[0], args[1:])
	if err != nil {
		printError(err)
		return
	}

	res, err := c.client.SaveFolderSettings(payload)
	if err != nil {
		printError(err)
		return
	}

	printSuccess("%s", res.Message)
	printSettings(res.Settings)
}

var settingKeys = map[string]bool{
	"stretch_type":         true,
	"linear_low_percent":   true,
	"linear_high_percent":  true,
	"stf_shadow_clip":      true,
	"stf_highlight_clip":   true,
	"stf_midtones_balance": true,
	"stf_strength":         true,
	"apply_to_subfolders":  true,
}

// parseSetArgs builds a save payload. Booleans and numbers are sent typed so the
// server does not read "false" as a truthy string.
func parseSetArgs(folder string, pairs []string) (map[string]any, error) {
	payload := map[string]any{"folder_path": folder}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		key = strings.ToLower(key)
		if !settingKeys[key] {
			return nil, fmt.Errorf("unknown setting %q", key)
		}

		switch {
		case key == "stretch_type":
			payload[key] = value
		case key == "apply_to_subfolders":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("%s must be true or false", key)
			}
			payload[key] = b
		default:
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				payload[key] = f
			} else {
				payload[key] = value
			}
		}
	}
	return payload, nil
}

// showCurve prints a sampled transfer curve
func (c *CLIHttp) showCurve(args []string) {
	samples := 11
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			usage("curve [folder] [samples]")
			return
		}
		samples = n
	}

	res, err := c.client.GetCurve(folderArg(args), samples)
	if err != nil {
		printError(err)
		return
	}

	fmt.Printf("\n%s curve (from %s)\n\n", res.StretchType, res.EffectiveFolder)
	fmt.Printf("%-8s %-8s\n", "Input", "Output")
	fmt.Println(strings.Repeat("-", 40))
	for i := range res.Input {
		fmt.Printf("%-8.3f %-8.3f %s\n", res.Input[i], res.Output[i], strings.Repeat("█", int(res.Output[i]*24+0.5)))
	}
}

// reindex triggers a reindex and waits for the result
func (c *CLIHttp) reindex(args []string) {
	folder := ""
	force := false
	for _, a := range args {
		if a == "--force" || a == "-f" {
			force = true
			continue
		}
		folder = a
	}

	printDim("Reindexing, this may take a while...")
	res, err := c.client.Reindex(folder, force)
	if err != nil {
		printError(err)
		if apiErr, ok := err.(*APIError); ok {
			if apiErr.ExitCode != nil {
				fmt.Printf("Exit code: %d\n", *apiErr.ExitCode)
			}
			if apiErr.Output != "" {
				fmt.Printf("Output:\n%s\n", apiErr.Output)
			}
		}
		return
	}

	printSuccess("%s (run %s)", res.Message, res.RunID)
	if res.Output != "" {
		fmt.Printf("Output:\n%s\n", res.Output)
	}
}

// showLastReindex prints the latest reindex run summary
func (c *CLIHttp) showLastReindex() {
	run, err := c.client.LastReindex()
	if err != nil {
		printError(err)
		return
	}
	if run == nil {
		fmt.Println("No reindex run recorded.")
		return
	}

	status := "success"
	if !run.Success {
		status = fmt.Sprintf("failed (exit %d)", run.ExitCode)
	}
	fmt.Println()
	fmt.Printf("  %-12s %s\n", "Run:", run.RunID)
	fmt.Printf("  %-12s %s\n", "Folder:", run.Folder)
	fmt.Printf("  %-12s %s (%s)\n", "Started:", run.StartedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(run.StartedAt))
	fmt.Printf("  %-12s %dms\n", "Duration:", run.DurationMS)
	fmt.Printf("  %-12s %s\n", "Status:", status)
	fmt.Printf("  %-12s %s\n", "Command:", run.Command)
}

// showHealth prints server health
func (c *CLIHttp) showHealth() {
	health, err := c.client.HealthCheck()
	if err != nil {
		printError(err)
		return
	}
	fmt.Printf("Status: %s  Database: %t  Version: %s\n", health.Status, health.DBHealthy, health.Version)
}

// showMetrics prints server counters
func (c *CLIHttp) showMetrics() {
	m, err := c.client.GetMetrics()
	if err != nil {
		printError(err)
		return
	}

	fmt.Println()
	fmt.Printf("  %-22s %s\n", "Uptime:", (time.Duration(m.UptimeSeconds) * time.Second).String())
	fmt.Printf("  %-22s %s\n", "SQLite queries:", humanize.Comma(int64(m.SQLite.QueriesTotal)))
	fmt.Printf("  %-22s %d busy / %d locked\n", "SQLite contention:", m.SQLite.BusyErrorsTotal, m.SQLite.LockedErrorsTotal)
	fmt.Printf("  %-22s %d (%d failed)\n", "Reindex runs:", m.Reindex.RunsTotal, m.Reindex.FailuresTotal)
	fmt.Printf("  %-22s %d\n", "Goroutines:", m.System.Goroutines)
	fmt.Printf("  %-22s %s\n", "Memory in use:", humanize.Bytes(m.System.MemoryAlloc))
}

// handleLogsCommand lists or clears server error logs
func (c *CLIHttp) handleLogsCommand(args []string) {
	if len(args) > 0 && args[0] == "clear" {
		if err := c.client.ClearErrorLogs(); err != nil {
			printError(err)
			return
		}
		printSuccess("Error logs cleared")
		return
	}

	logs, err := c.client.GetErrorLogs()
	if err != nil {
		printError(err)
		return
	}
	if len(logs) == 0 {
		fmt.Println("No error logs.")
		return
	}

	fmt.Printf("%-20s %-6s %-14s %s\n", "Time", "Level", "Source", "Message")
	fmt.Println(strings.Repeat("-", 80))
	for _, l := range logs {
		fmt.Printf("%-20s %-6s %-14s %s\n",
			l.Timestamp.Local().Format("2006-01-02 15:04:05"),
			l.Level,
			truncate(l.Source, 14),
			truncate(l.Message, 60),
		)
	}
}

// handleServerCommand manages CLI server profiles
func (c *CLIHttp) handleServerCommand(args []string) {
	cfg, err := LoadConfig()
	if err != nil {
		printError(err)
		return
	}
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list", "ls":
		for _, name := range cfg.ServerNames() {
			marker := " "
			if name == cfg.DefaultServer {
				marker = "*"
			}
			s := cfg.Servers[name]
			fmt.Printf("%s %-12s %-32s %s\n", marker, name, s.URL, s.Description)
		}
	case "use":
		if len(args) < 2 {
			usage("server use <name>")
			return
		}
		if err := cfg.SetDefault(args[1]); err != nil {
			printError(err)
			return
		}
		server, _ := cfg.GetServer(args[1])
		c.client = NewClient(server.URL)
		printSuccess("Now using %s (%s)", args[1], server.URL)
	case "add":
		if len(args) < 3 {
			usage("server add <name> <url> [description]")
			return
		}
		if err := cfg.AddServer(args[1], args[2], strings.Join(args[3:], " ")); err != nil {
			printError(err)
			return
		}
		printSuccess("Server %s saved", args[1])
	case "remove", "rm":
		if len(args) < 2 {
			usage("server remove <name>")
			return
		}
		if err := cfg.RemoveServer(args[1]); err != nil {
			printError(err)
			return
		}
		printSuccess("Server %s removed", args[1])
	default:
		fmt.Printf("Unknown server command: %s\n", args[0])
	}
}

// clearScreen clears the terminal screen
func (c *CLIHttp) clearScreen() {
	fmt.Print("\033[H\033[2J")
}

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
