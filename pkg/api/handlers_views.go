package api

import (
	"fmt"
	"net/http"

	"github.com/batcomd/batcomd/pkg/catalog"
	"github.com/batcomd/batcomd/pkg/roster"
)

type displayPage struct {
	PageTitle string
	Heading   string
	Status    string
	Gadgets   []catalog.Gadget
}

type contactsPage struct {
	PageTitle string
	Heading   string
	Contacts  []roster.Contact
}

func (a *API) handleBatcaveDisplay(w http.ResponseWriter, r *http.Request) {
	stock := a.catalog.InStockCount()
	total := a.catalog.Count()

	err := a.views.Render(w, "index.html", displayPage{
		PageTitle: "Batcave Main Display",
		Heading:   "Welcome to the Batcave",
		Status:    fmt.Sprintf("%d/%d gadget types in stock.", stock, total),
		Gadgets:   a.catalog.List(),
	})
	if err != nil {
		a.log.Error("dashboard render failed", "error", err)
		a.writeDomainError(w, err)
	}
}

func (a *API) handleContactsView(w http.ResponseWriter, r *http.Request) {
	err := a.views.Render(w, "contacts.html", contactsPage{
		PageTitle: "Contact Database",
		Heading:   "Registered Contacts",
		Contacts:  a.roster.List(),
	})
	if err != nil {
		a.log.Error("contacts view render failed", "error", err)
		a.writeDomainError(w, err)
	}
}
