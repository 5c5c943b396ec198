package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
)

const (
	fieldName = iota
	fieldQuantity
	fieldCategory
	fieldCount
)

// doneMsg reports the outcome of a manager call made from a command.
type doneMsg struct {
	status    string
	err       error
	closeForm bool
}

// Model is the bubbletea model for the grocery list.
type Model struct {
	ctx      context.Context
	manager  *grocery.Manager
	registry *grocery.Registry
	feed     *Feed
	keys     keyMap

	items  []model.GroceryItem
	query  string
	cursor int
	mode   mode

	search textinput.Model

	form     [fieldCount]textinput.Model
	focus    int
	editing  model.GroceryItem
	formErr  string
	status   string
	errMsg   string
	width    int
	quitting bool
}

// New builds the UI model. Snapshots pushed into feed replace the rendered
// list; mutations go straight to mgr.
func New(ctx context.Context, mgr *grocery.Manager, reg *grocery.Registry, feed *Feed) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "filter by name or category"

	var form [fieldCount]textinput.Model
	for i := range form {
		form[i] = textinput.New()
		form[i].Prompt = ""
	}
	form[fieldName].Placeholder = "Milk"
	form[fieldName].CharLimit = 80
	form[fieldQuantity].Placeholder = "1"
	form[fieldQuantity].CharLimit = 6
	form[fieldCategory].Placeholder = strings.Join(reg.Keys(), ", ")

	return Model{
		ctx:      ctx,
		manager:  mgr,
		registry: reg,
		feed:     feed,
		keys:     defaultKeyMap(),
		items:    mgr.Items(),
		search:   search,
		form:     form,
	}
}

func (m Model) Init() tea.Cmd {
	return m.feed.wait()
}

// visible is the filtered projection the cursor indexes into.
func (m Model) visible() []model.GroceryItem {
	return grocery.Filter(m.items, m.query)
}

func (m Model) selected() (model.GroceryItem, bool) {
	items := m.visible()
	if m.cursor < 0 || m.cursor >= len(items) {
		return model.GroceryItem{}, false
	}
	return items[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case itemsMsg:
		m.items = msg
		m.clampCursor()
		return m, m.feed.wait()

	case doneMsg:
		if msg.err != nil {
			if m.mode == modeForm {
				m.formErr = msg.err.Error()
			} else {
				m.errMsg = msg.err.Error()
			}
			return m, nil
		}
		m.errMsg = ""
		m.status = msg.status
		if msg.closeForm && m.mode == modeForm {
			m.closeForm()
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Cancel):
		m.query = ""
		m.clampCursor()

	case key.Matches(msg, m.keys.Toggle):
		if item, ok := m.selected(); ok {
			return m, m.toggle(item)
		}
	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.selected(); ok {
			return m, m.delete(item)
		}
	case key.Matches(msg, m.keys.Undo):
		return m, m.undo()

	case key.Matches(msg, m.keys.Add):
		id, err := m.manager.NewID()
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		cmd := m.openForm(model.GroceryItem{ID: id, Quantity: 1})
		return m, cmd
	case key.Matches(msg, m.keys.Edit):
		if item, ok := m.selected(); ok {
			cmd := m.openForm(item)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeList
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.mode = modeList
		m.query = ""
		m.search.SetValue("")
		m.search.Blur()
		m.clampCursor()
		return m, nil
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.search.Value()
	m.cursor = 0
	return m, cmd
}

func (m *Model) openForm(item model.GroceryItem) tea.Cmd {
	m.mode = modeForm
	m.editing = item
	m.formErr = ""
	m.form[fieldName].SetValue(item.Name)
	m.form[fieldQuantity].SetValue(strconv.Itoa(grocery.ClampQuantity(item.Quantity)))
	m.form[fieldCategory].SetValue(item.Category)
	return m.focusField(fieldName)
}

func (m *Model) closeForm() {
	m.mode = modeList
	m.formErr = ""
	for i := range m.form {
		m.form[i].Blur()
		m.form[i].SetValue("")
	}
}

func (m *Model) focusField(i int) tea.Cmd {
	m.focus = (i + fieldCount) % fieldCount
	for j := range m.form {
		if j != m.focus {
			m.form[j].Blur()
		}
	}
	return m.form[m.focus].Focus()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.closeForm()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		cmd := m.focusField(m.focus + 1)
		return m, cmd
	case key.Matches(msg, m.keys.Prev):
		cmd := m.focusField(m.focus - 1)
		return m, cmd
	case key.Matches(msg, m.keys.Submit):
		item, err := m.formItem()
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		return m, m.submit(item)
	}

	var cmd tea.Cmd
	m.form[m.focus], cmd = m.form[m.focus].Update(msg)
	return m, cmd
}

// formItem reads the form back into a record. Quantities below 1 are clamped
// and a blank category takes the keyword suggestion.
func (m Model) formItem() (model.GroceryItem, error) {
	item := m.editing
	item.Name = m.form[fieldName].Value()
	item.Category = strings.TrimSpace(m.form[fieldCategory].Value())

	qty := strings.TrimSpace(m.form[fieldQuantity].Value())
	if qty == "" {
		item.Quantity = 1
	} else {
		n, err := strconv.Atoi(qty)
		if err != nil {
			return model.GroceryItem{}, errors.New("quantity must be a whole number")
		}
		item.Quantity = grocery.ClampQuantity(n)
	}

	if item.Category == "" {
		item.Category = grocery.Categorize(item.Name)
	} else if entry, err := m.registry.Find(item.Category); err == nil {
		item.Category = entry.Key
	}
	return item, nil
}

func (m Model) toggle(item model.GroceryItem) tea.Cmd {
	return func() tea.Msg {
		updated, err := m.manager.ToggleBought(m.ctx, item.ID)
		if err != nil {
			return doneMsg{err: err}
		}
		if updated.IsBought {
			return doneMsg{status: fmt.Sprintf("Bought %s", updated.Name)}
		}
		return doneMsg{status: fmt.Sprintf("%s back on the list", updated.Name)}
	}
}

func (m Model) delete(item model.GroceryItem) tea.Cmd {
	return func() tea.Msg {
		deleted, err := m.manager.DeleteWithUndo(m.ctx, item.ID)
		if err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{status: fmt.Sprintf("Deleted %s. Press u to undo.", deleted.Name)}
	}
}

func (m Model) undo() tea.Cmd {
	return func() tea.Msg {
		item, restored, err := m.manager.UndoDelete(m.ctx)
		if err != nil {
			return doneMsg{err: err}
		}
		if !restored {
			return doneMsg{status: "Nothing to undo"}
		}
		return doneMsg{status: fmt.Sprintf("Restored %s", item.Name)}
	}
}

// submit hands the form result back to the manager, which updates a known
// id and adds anything else. The form's id is fixed when it opens, so a
// repeated submit updates the record the first one added.
func (m Model) submit(item model.GroceryItem) tea.Cmd {
	return func() tea.Msg {
		_, existed := m.manager.Get(item.ID)
		saved, err := m.manager.HandleReturnedItem(m.ctx, item)
		if err != nil {
			return doneMsg{err: err}
		}
		verb := "Added"
		if existed {
			verb = "Saved"
		}
		return doneMsg{status: fmt.Sprintf("%s %s", verb, saved.Name), closeForm: true}
	}
}
