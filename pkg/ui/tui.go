// Package ui provides the Bubble Tea TUI for the trading client.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/comit-network/hermes/business/feed/domain"
	"github.com/comit-network/hermes/pkg/ui/components"
	"github.com/shopspring/decimal"
)

// markPriceStaleAfter is when the status bar starts flagging the mark
// price as stale.
const markPriceStaleAfter = 30 * time.Second

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	offers    *components.OffersComponent
	positions *components.PositionsComponent
	wallet    *components.WalletComponent
	alerts    *components.AlertsComponent

	keys KeyMap

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	ready           bool
	quitting        bool
	showLogs        bool
	width           int
	height          int
	connectionState map[string]*ConnectionInfo
	markPrice       decimal.Decimal
	markPriceAt     time.Time
	peerID          string
	daemonVersion   string
	latestVersion   string
	lastUpdate      time.Time
	errors          []ErrorEntry // Persistent error panel (last 3)
	logs            []string     // Recent log messages

	// Startup state
	startupComplete bool
	startupSteps    map[string]*StartupStep
	startupTime     time.Time
	haveFeedData    bool
}

// New creates a new TUI model.
func New() Model {
	now := time.Now()
	return Model{
		offers:       components.NewOffersComponent(),
		positions:    components.NewPositionsComponent(12),
		wallet:       components.NewWalletComponent(),
		alerts:       components.NewAlertsComponent(),
		keys:         DefaultKeyMap(),
		phase:        PhaseWelcome,
		welcomeStart: now,
		connectionState: map[string]*ConnectionInfo{
			"Daemon": {Connected: false},
			"BitMEX": {Connected: false},
		},
		logs:   make([]string, 0, 10),
		errors: make([]ErrorEntry, 0, 3),
		startupSteps: map[string]*StartupStep{
			"config":  {Name: "Loading configuration", Status: "pending"},
			"daemon":  {Name: "Connecting to daemon", Status: "pending"},
			"bitmex":  {Name: "Connecting to BitMEX", Status: "pending"},
			"version": {Name: "Checking for updates", Status: "pending"},
		},
		startupTime: now,
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Always allow quit
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to startup
		if m.phase == PhaseWelcome {
			return m.beginStartup(), tickCmd()
		}
		// Normal key handling
		switch {
		case key.Matches(msg, m.keys.Dismiss):
			// The monitor owns alert state: ask it to dismiss and wait
			// for the hide to come back as an AlertMsg.
			if id, ok := m.alerts.FirstSticky(); ok && OnDismissAlert != nil {
				go OnDismissAlert(id)
			}
			return m, nil
		case key.Matches(msg, m.keys.Logs):
			m.showLogs = !m.showLogs
			return m, nil
		case key.Matches(msg, m.keys.Errors):
			m.errors = make([]ErrorEntry, 0, 3)
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.positions.ScrollUp()
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.positions.ScrollDown()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		// Check if welcome timeout has elapsed
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			return m.beginStartup(), tickCmd()
		}
		return m, tickCmd()

	case WelcomeCompleteMsg:
		if m.phase == PhaseWelcome {
			return m.beginStartup(), tickCmd()
		}

	case ChannelStatusMsg:
		m.connectionState["Daemon"] = &ConnectionInfo{
			Connected: msg.Connected,
			LastSeen:  time.Now(),
		}
		m.lastUpdate = time.Now()
		if step, ok := m.startupSteps["daemon"]; ok {
			if msg.Connected {
				step.Status = "connected"
			} else {
				step.Status = "connecting"
			}
		}
		// Config is loaded by the time any connection reports in
		if m.startupSteps["config"] != nil {
			m.startupSteps["config"].Status = "done"
		}

	case PriceFeedStatusMsg:
		m.connectionState["BitMEX"] = &ConnectionInfo{
			Connected: msg.Connected,
			LastSeen:  time.Now(),
		}
		m.lastUpdate = time.Now()
		if step, ok := m.startupSteps["bitmex"]; ok {
			if msg.Connected {
				step.Status = "connected"
			} else {
				step.Status = "connecting"
			}
		}
		if m.startupSteps["config"] != nil {
			m.startupSteps["config"].Status = "done"
		}

	case WalletMsg:
		m.wallet.SetWallet(msg.Wallet.Balance, msg.Wallet.Address, msg.Wallet.LastUpdatedAt.Time())
		m.haveFeedData = true
		m.lastUpdate = time.Now()

	case QuoteMsg:
		m.wallet.SetQuote(msg.Quote.Bid, msg.Quote.Ask, msg.Quote.LastUpdatedAt.Time())
		m.haveFeedData = true
		m.lastUpdate = time.Now()

	case OfferMsg:
		row := offerRow(msg)
		if msg.Position == domain.PositionShort {
			m.offers.SetShort(row)
		} else {
			m.offers.SetLong(row)
		}
		m.haveFeedData = true
		m.lastUpdate = time.Now()

	case CfdsMsg:
		m.positions.Update(positionRows(msg.Cfds))
		m.haveFeedData = true
		m.lastUpdate = time.Now()

	case IdentityMsg:
		m.peerID = msg.Identity.PeerID
		m.lastUpdate = time.Now()

	case MarkPriceMsg:
		m.markPrice = msg.Price.Value
		m.markPriceAt = msg.Price.ReceivedAt
		m.lastUpdate = time.Now()

	case AlertMsg:
		if msg.Visible {
			m.alerts.Upsert(components.AlertEntry{
				ID:      msg.ID,
				Message: msg.Message,
				Sticky:  msg.Sticky,
				ShownAt: time.Now(),
			})
		} else {
			m.alerts.Remove(msg.ID)
		}
		m.lastUpdate = time.Now()

	case VersionMsg:
		m.daemonVersion = msg.Daemon
		m.latestVersion = msg.Latest
		if m.startupSteps["version"] != nil {
			m.startupSteps["version"].Status = "done"
		}

	case ErrorMsg:
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		// Add to persistent errors (keep last 3)
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
		// Check if all steps are complete
		allDone := true
		for _, step := range m.startupSteps {
			if step.Status != "connected" && step.Status != "done" {
				allDone = false
				break
			}
		}
		if allDone {
			m.startupComplete = true
		}
	}

	return m, nil
}

// beginStartup leaves the welcome screen and kicks off module loading.
func (m Model) beginStartup() Model {
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	// Trigger callback directly (don't use Send() from within Update)
	if OnStartModules != nil {
		go OnStartModules()
	}
	return m
}

// offerRow converts an offer update into its display row.
func offerRow(msg OfferMsg) components.OfferRow {
	side := "LONG"
	if msg.Position == domain.PositionShort {
		side = "SHORT"
	}

	row := components.OfferRow{
		Side:        side,
		Missing:     msg.Offer.Missing(),
		MinQuantity: msg.Offer.MinQuantity,
		MaxQuantity: msg.Offer.MaxQuantity,
		LotSize:     msg.Offer.LotSize,
	}
	if !row.Missing {
		row.Price = *msg.Offer.Price
		row.FundingHourly = *msg.Offer.FundingRateHourly
		row.FundingAnnual = *msg.Offer.FundingRateAnnualized
	}
	for _, d := range msg.Offer.LeverageDetails {
		row.Leverage = append(row.Leverage, components.LeverageRow{
			Leverage:         d.Leverage,
			MarginPerLot:     d.MarginPerLot,
			FundingFeePerLot: d.InitialFundingFeePerLot,
			LiquidationPrice: d.LiquidationPrice,
		})
	}
	return row
}

// positionRows converts the contract list into display rows.
func positionRows(cfds []domain.Cfd) []components.PositionRow {
	rows := make([]components.PositionRow, 0, len(cfds))
	for _, c := range cfds {
		rows = append(rows, components.PositionRow{
			OrderID:          c.OrderID,
			Position:         string(c.Position),
			Quantity:         c.Quantity,
			EntryPrice:       c.InitialPrice,
			Leverage:         c.Leverage,
			Margin:           c.Margin,
			LiquidationPrice: c.LiquidationPrice,
			ProfitBTC:        c.ProfitBTC,
			ProfitPercent:    c.ProfitPercent,
			State:            c.State,
		})
	}
	return rows
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logLine := fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	// Phase-based rendering
	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		// Show startup until the first daemon snapshot, all steps done,
		// or the grace period runs out (a down daemon surfaces as an
		// alert on the dashboard instead).
		if !m.haveFeedData && !m.startupComplete && time.Since(m.startupTime) < StartupGrace {
			return m.renderStartupScreen()
		}
		// Transition to dashboard when ready
		m.phase = PhaseDashboard
		fallthrough
	case PhaseDashboard:
		// Continue to main dashboard
	}

	var b strings.Builder

	// Title
	title := TitleStyle.Render(" ⚡ Hermes CFD Trading ")
	b.WriteString(title)
	b.WriteString("\n\n")

	// Status bar
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	// Alert overlay
	if !m.alerts.Empty() {
		width := m.width - 4
		if width < 20 {
			width = 20
		}
		b.WriteString(AlertBoxStyle.Width(width).Render(m.alerts.View()))
		b.WriteString("\n\n")
	}

	// Main content: wallet + offers on left, positions on right
	var leftContent strings.Builder
	leftContent.WriteString(m.wallet.View())
	leftContent.WriteString("\n\n")
	leftContent.WriteString(m.offers.View())
	leftCol := leftContent.String()

	rightCol := m.positions.View()

	// Side by side if enough width
	if m.width > 120 {
		left := BoxStyle.Width(m.width/3 - 2).Render(leftCol)
		right := BoxStyle.Width(2*m.width/3 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}

	b.WriteString("\n\n")

	// Recent log panel (toggled with l)
	if m.showLogs && len(m.logs) > 0 {
		b.WriteString(MutedValue.Render("LOGS"))
		b.WriteString("\n")
		for _, line := range m.logs {
			b.WriteString(MutedValue.Render("  " + line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Persistent error panel (show last 3 errors)
	if len(m.errors) > 0 {
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Help
	helpParts := make([]string, 0, 4)
	for _, binding := range m.keys.ShortHelp() {
		helpParts = append(helpParts, binding.Help().Key+": "+binding.Help().Desc)
	}
	b.WriteString(HelpStyle.Render(strings.Join(helpParts, " • ")))

	return b.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	goldStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWarning)

	mutedStyle := lipgloss.NewStyle().
		Foreground(ColorMuted)

	greenStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary)

	// Animated dots based on time
	elapsed := time.Since(m.welcomeStart)
	dotCount := int(elapsed.Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder

	// Center the content vertically
	sb.WriteString("\n\n\n\n")

	// ASCII art logo
	logo := `
   ██╗  ██╗███████╗██████╗ ███╗   ███╗███████╗███████╗
   ██║  ██║██╔════╝██╔══██╗████╗ ████║██╔════╝██╔════╝
   ███████║█████╗  ██████╔╝██╔████╔██║█████╗  ███████╗
   ██╔══██║██╔══╝  ██╔══██╗██║╚██╔╝██║██╔══╝  ╚════██║
   ██║  ██║███████╗██║  ██║██║ ╚═╝ ██║███████╗███████║
   ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═╝     ╚═╝╚══════╝╚══════╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")

	// Subtitle
	subtitle := "           C F D   T R A D I N G   C L I E N T"
	sb.WriteString(mutedStyle.Render(subtitle))
	sb.WriteString("\n\n\n")

	// Tagline with gold styling
	tagline := "          ⚡  Your keys, your coins  ⚡"
	sb.WriteString(goldStyle.Render(tagline))
	sb.WriteString("\n\n\n")

	// Loading indicator
	loading := fmt.Sprintf("                  Initializing%s", dots)
	sb.WriteString(greenStyle.Render(loading))
	sb.WriteString("\n\n")

	// Skip hint
	hint := "            Press any key to skip, or wait..."
	sb.WriteString(mutedStyle.Render(hint))
	sb.WriteString("\n")

	return sb.String()
}

// renderStartupScreen renders the loading/startup screen.
func (m Model) renderStartupScreen() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF"))

	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	successStyle := lipgloss.NewStyle().Foreground(ColorSecondary)
	connectingStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	failedStyle := lipgloss.NewStyle().Foreground(ColorDanger)

	var sb strings.Builder

	sb.WriteString("\n\n")
	sb.WriteString(titleStyle.Render("  ⚡ Hermes CFD Trading"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("  Starting up..."))
	sb.WriteString("\n\n")

	// Show startup steps in order
	stepOrder := []string{"config", "daemon", "bitmex", "version"}
	for _, key := range stepOrder {
		step, ok := m.startupSteps[key]
		if !ok {
			continue
		}

		var icon, statusText string
		var style lipgloss.Style

		switch step.Status {
		case "connected", "done":
			icon = "✓"
			statusText = "Ready"
			style = successStyle
		case "connecting":
			// Animated spinner based on time
			spinners := []string{"◐", "◓", "◑", "◒"}
			idx := int(time.Since(m.startupTime).Milliseconds()/200) % len(spinners)
			icon = spinners[idx]
			statusText = "Connecting..."
			style = connectingStyle
		case "failed":
			icon = "✗"
			statusText = "Failed"
			style = failedStyle
		default:
			icon = "○"
			statusText = "Pending"
			style = mutedStyle
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(icon),
			mutedStyle.Render(step.Name),
			style.Render(statusText),
		))
	}

	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n\n")

	sb.WriteString(mutedStyle.Render("  Waiting for first daemon snapshot..."))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	// Connection status, daemon first
	for _, name := range []string{"Daemon", "BitMEX"} {
		info := m.connectionState[name]
		var statusStyle lipgloss.Style
		var icon string
		var status string
		if info != nil && info.Connected {
			statusStyle = StatusConnected
			icon = "●"
			status = name
		} else {
			statusStyle = StatusDisconnected
			icon = "○"
			status = name + " (disconnected)"
		}
		parts = append(parts, statusStyle.Render(icon+" "+status))
	}

	// Mark price with staleness flag
	if !m.markPrice.IsZero() {
		priceStr := fmt.Sprintf("Mark: $%s", m.markPrice.StringFixed(2))
		if time.Since(m.markPriceAt) > markPriceStaleAfter {
			parts = append(parts, StatusStale.Render(priceStr+" (stale)"))
		} else {
			parts = append(parts, priceStr)
		}
	}

	// Daemon identity and version
	if m.peerID != "" {
		parts = append(parts, MutedValue.Render("Peer: "+shortPeerID(m.peerID)))
	}
	if m.daemonVersion != "" {
		version := "v" + m.daemonVersion
		if m.latestVersion != "" && m.latestVersion != m.daemonVersion {
			version += " (latest " + m.latestVersion + ")"
		}
		parts = append(parts, MutedValue.Render(version))
	}

	// Last update with activity indicator
	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		indicator := ""
		if ago < 2*time.Second {
			indicator = "▪" // Recent activity indicator
		}
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago %s", ago, indicator)))
	}

	return strings.Join(parts, "  │  ")
}

// shortPeerID truncates a libp2p peer id for the status bar.
func shortPeerID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:6] + "..." + id[len(id)-4:]
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
// This is set by main.go to signal when to begin loading modules.
var OnStartModules func()

// OnDismissAlert is called when the user dismisses the topmost sticky
// alert. This is set by main.go to route the dismissal to the monitor.
var OnDismissAlert func(id string)

// Run starts the Bubble Tea program.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
	// Call OnStartModules callback when StartModulesMsg is sent
	if _, ok := msg.(StartModulesMsg); ok && OnStartModules != nil {
		OnStartModules()
	}
}
