package tui

import (
	"fmt"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	total, bought := len(m.items), 0
	for _, item := range m.items {
		if item.IsBought {
			bought++
		}
	}
	b.WriteString(titleStyle.Render("Listify"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d items, %d bought", total, bought)))
	b.WriteString("\n")

	switch {
	case m.mode == modeSearch:
		b.WriteString(m.search.View())
	case m.query != "":
		b.WriteString(mutedStyle.Render(fmt.Sprintf("filter: %q (esc to clear)", m.query)))
	}
	b.WriteString("\n\n")

	if m.mode == modeForm {
		b.WriteString(m.formView())
		b.WriteString("\n\n")
		b.WriteString(renderHelp(m.keys.formHelp()))
		return b.String()
	}

	b.WriteString(m.listView())
	b.WriteString("\n")

	switch {
	case m.errMsg != "":
		b.WriteString(errorStyle.Render(m.errMsg))
	case m.status != "":
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(renderHelp(m.keys.listHelp()))
	return b.String()
}

func (m Model) listView() string {
	items := m.visible()
	if len(items) == 0 {
		if m.query != "" {
			return mutedStyle.Render(fmt.Sprintf("No items match %q.", m.query)) + "\n"
		}
		return mutedStyle.Render("No items yet. Press a to add one.") + "\n"
	}

	var b strings.Builder
	for i, item := range items {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}

		check := "[ ]"
		name := item.Name
		if item.IsBought {
			check = "[x]"
			name = boughtStyle.Render(name)
		}

		line := fmt.Sprintf("%s%s %s x%d", marker, check, name, item.Quantity)
		if item.Category != "" {
			line += " " + CategoryChip(m.registry.Lookup(item.Category))
		}
		if m.width > 0 && xansi.StringWidth(line) > m.width {
			line = xansi.Truncate(line, m.width, "…")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) formView() string {
	title := "Add item"
	if m.editing.ID != 0 {
		title = "Edit item"
	}

	labels := [fieldCount]string{"Name", "Quantity", "Category"}
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	for i, in := range m.form {
		label := labelStyle.Render(labels[i])
		if i == m.focus {
			label = focusedLabel.Render(labels[i])
		}
		b.WriteString(label)
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	if m.form[fieldCategory].Value() == "" {
		if guess := grocery.Categorize(m.form[fieldName].Value()); guess != "" {
			b.WriteString(mutedStyle.Render("category if left blank: ") + CategoryChip(m.registry.Lookup(guess)))
			b.WriteString("\n")
		}
	}
	if m.formErr != "" {
		b.WriteString(errorStyle.Render(m.formErr))
		b.WriteString("\n")
	}
	return formBoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
