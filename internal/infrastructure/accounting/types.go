package accounting

import "github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"

// loginRequest is the token endpoint request body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the token endpoint response body.
type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// submitResponseItem is one result entry returned by the document
// endpoints. The API wraps every submission result in an array even for
// single-document posts.
type submitResponseItem struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	GUID    string `json:"guid"`
}

// documentPaths maps each document type to its endpoint path.
var documentPaths = map[invoicing.DocumentType]string{
	invoicing.DocCustomer:          "api/v1/customers",
	invoicing.DocSalesOrder:        "api/v1/sales-orders",
	invoicing.DocSalesInvoice:      "api/v1/sales-invoices",
	invoicing.DocSalesReturn:       "api/v1/sales-returns",
	invoicing.DocCashReceipt:       "api/v1/cash-receipts",
	invoicing.DocCreditAdvice:      "api/v1/credit-advices",
	invoicing.DocWarehouseTransfer: "api/v1/warehouse-transfers",
}
