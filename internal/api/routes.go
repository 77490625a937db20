package api

import (
	"github.com/gorilla/mux"
)

func SetupRoutes(imports *ImportHandler, catalog *CatalogHandler, ledger *LedgerHandler, crm *CRMHandler) *mux.Router {
	r := mux.NewRouter()

	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	// Internal trigger endpoint, no user identity attached.
	r.HandleFunc("/api/v1/imports/process", imports.ProcessTrigger).Methods("POST")

	authed := r.PathPrefix("/api/v1").Subrouter()
	authed.Use(UserMiddleware)

	authed.HandleFunc("/imports/upload-url", imports.UploadURL).Methods("POST")
	authed.HandleFunc("/imports", imports.CreateImport).Methods("POST")
	authed.HandleFunc("/imports", imports.ListImports).Methods("GET")
	authed.HandleFunc("/imports/{documentID}/progress", imports.GetImport).Methods("GET")
	authed.HandleFunc("/imports/{documentID}/commit", imports.ConfirmImport).Methods("POST")

	authed.HandleFunc("/categories", catalog.ListCategories).Methods("GET")
	authed.HandleFunc("/categories", catalog.CreateCategory).Methods("POST")
	authed.HandleFunc("/categories/{categoryID}", catalog.UpdateCategory).Methods("PUT")
	authed.HandleFunc("/categories/{categoryID}", catalog.DeleteCategory).Methods("DELETE")
	authed.HandleFunc("/knowledge", catalog.ListKnowledge).Methods("GET")
	authed.HandleFunc("/knowledge", catalog.CreateKnowledge).Methods("POST")
	authed.HandleFunc("/knowledge/{entryID}", catalog.DeleteKnowledge).Methods("DELETE")

	authed.HandleFunc("/ledger", ledger.ListEntries).Methods("GET")
	authed.HandleFunc("/ledger", ledger.CreateEntry).Methods("POST")
	authed.HandleFunc("/ledger/export", ledger.ExportEntries).Methods("GET")
	authed.HandleFunc("/ledger/{entryID}", ledger.UpdateEntry).Methods("PUT")
	authed.HandleFunc("/ledger/{entryID}", ledger.DeleteEntry).Methods("DELETE")

	authed.HandleFunc("/contacts", crm.ListContacts).Methods("GET")
	authed.HandleFunc("/contacts", crm.CreateContact).Methods("POST")
	authed.HandleFunc("/contacts/{contactID}", crm.UpdateContact).Methods("PUT")
	authed.HandleFunc("/contacts/{contactID}", crm.DeleteContact).Methods("DELETE")

	authed.HandleFunc("/campaigns", crm.ListCampaigns).Methods("GET")
	authed.HandleFunc("/campaigns", crm.CreateCampaign).Methods("POST")
	authed.HandleFunc("/campaigns/{campaignID}/schedule", crm.ScheduleCampaign).Methods("POST")
	authed.HandleFunc("/campaigns/{campaignID}", crm.UpdateCampaign).Methods("PUT")
	authed.HandleFunc("/campaigns/{campaignID}", crm.DeleteCampaign).Methods("DELETE")

	return r
}
