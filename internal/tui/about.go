package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type aboutSection struct {
	title string
	body  []string
}

var aboutSections = []aboutSection{
	{
		title: "What is MGNREGA?",
		body: []string{
			"The Mahatma Gandhi National Rural Employment Guarantee Act (MGNREGA) is a social security measure that aims to guarantee the 'right to work'. " +
				"The Act was enacted in 2005 and provides at least 100 days of guaranteed wage employment in a financial year to every rural household " +
				"whose adult members volunteer to do unskilled manual work.",
		},
	},
	{
		title: "Key Objectives",
		body: []string{
			"• Enhance livelihood security in rural areas",
			"• Create durable assets",
			"• Bring women into the mainstream of economic activities",
			"• Strengthen Panchayati Raj",
		},
	},
	{
		title: "How It Works",
		body: []string{
			"Households in rural areas can register for MGNREGA and request work. The Gram Panchayat (village council) is responsible for " +
				"providing employment within 15 days of receiving an application. If work is not provided within this timeframe, the applicant " +
				"is entitled to unemployment allowance.",
		},
	},
}

var aboutBenefits = [][2]string{
	{"Guaranteed Employment", "At least 100 days of work per year"},
	{"Fair Wages", "Statutory minimum wages"},
	{"Women Empowerment", "One-third reservation for women"},
	{"Dignity of Labour", "Manual work for rural development"},
}

// aboutModel is the static information page.
type aboutModel struct {
	width  int
	height int
	body   viewport.Model
}

func newAboutModel() aboutModel {
	return aboutModel{body: viewport.New(0, 0)}
}

func (a *aboutModel) setSize(w, h int) {
	a.width = w
	a.height = h
	a.body.Width = w
	a.body.Height = h
	a.body.SetContent(a.render())
}

func (a aboutModel) update(msg tea.Msg) (aboutModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			a.body.ScrollUp(1)
		case key.Matches(msg, keys.Down):
			a.body.ScrollDown(1)
		case key.Matches(msg, keys.PageUp):
			a.body.PageUp()
		case key.Matches(msg, keys.PageDown):
			a.body.PageDown()
		}
	}
	return a, nil
}

func (a aboutModel) view() string {
	return a.body.View()
}

func (a aboutModel) render() string {
	w := a.width - 4
	if w < 20 {
		w = 20
	}
	text := lipgloss.NewStyle().Width(w - 4)

	rows := []string{bannerTitleStyle.Render("About MGNREGA"), ""}
	for _, s := range aboutSections {
		rows = append(rows, subtitleStyle.Render(s.title))
		rows = append(rows, text.Render(strings.Join(s.body, "\n")), "")
	}

	rows = append(rows, subtitleStyle.Render("Benefits"))
	var cards []string
	for _, b := range aboutBenefits {
		cards = append(cards, cardStyle.Width(26).MarginRight(1).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(b[0]), mutedStyle.Render(b[1])),
		))
	}
	// Two per row on narrow terminals.
	if w < 4*28 {
		rows = append(rows,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1]),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3]),
		)
	} else {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
