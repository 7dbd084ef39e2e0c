// Package handlers implements the admin HTTP API of campi.
//
// Handlers delegate to the services layer and only deal with parameter
// parsing, response formatting and HTTP semantics.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Parameter parsing                                            │
//	│  - Error mapping to HTTP status codes                           │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│             pool.Pool (Stats)  │  services.AccessLog            │
//	└─────────────────────────────────────────────────────────────────┘
//
// # API Endpoints
//
// Routes are mounted under /api/v1 by Handler.Register:
//
//	┌────────┬──────────────────┬────────────────────────────────────────┐
//	│ Method │ Endpoint         │ Description                            │
//	├────────┼──────────────────┼────────────────────────────────────────┤
//	│ GET    │ /status          │ Pool snapshot (workers, queue, totals) │
//	│ GET    │ /requests        │ Access log with filtering/pagination   │
//	│ GET    │ /requests/export │ Access log as an xlsx workbook         │
//	│ GET    │ /failures        │ Most recent contained task failures    │
//	└────────┴──────────────────┴────────────────────────────────────────┘
//
// GET /requests query parameters:
//
//	┌──────────┬───────┬──────────────────────────────────────────┐
//	│ Name     │ Type  │ Description                              │
//	├──────────┼───────┼──────────────────────────────────────────┤
//	│ status   │ []int │ Filter by response status (OR logic)     │
//	│ path     │ []str │ Filter by request path (OR logic)        │
//	│ page     │ int   │ Page number (default: 1)                 │
//	│ pageSize │ int   │ Items per page (default: 20, max: 100)   │
//	└──────────┴───────┴──────────────────────────────────────────┘
//
// Response:
//
//	{
//	    "page": 1,
//	    "pageCount": 3,
//	    "total": 42,
//	    "requests": [
//	        {
//	            "id": "0b5c...",
//	            "remote_addr": "10.0.0.7:41000",
//	            "request_line": "GET / HTTP/1.1",
//	            "path": "/",
//	            "status": 200,
//	            "bytes": 312,
//	            "duration_ms": 0.41,
//	            "created_at": "2026-01-02T03:04:05Z"
//	        }
//	    ]
//	}
//
// # Error Handling
//
// Errors use the same body everywhere:
//
//	{ "error": "error message" }
//
//	┌─────────────────────────────┬────────┬──────────────────────────────┐
//	│ Error Type                  │ Status │ When                         │
//	├─────────────────────────────┼────────┼──────────────────────────────┤
//	│ Validation error            │ 400    │ Invalid query parameters     │
//	│ UnauthorizedError           │ 401    │ Missing or invalid token     │
//	│ Internal error              │ 500    │ Store failures               │
//	└─────────────────────────────┴────────┴──────────────────────────────┘
package handlers
