// Package responder answers one request per connection.
//
// A connection carries a single request line. The line is matched verbatim
// against a fixed route table; nothing else of the request is parsed.
//
//	┌───────────────────────────────┬────────┬──────────────────────────────┐
//	│ Request line                  │ Status │ Payload                      │
//	├───────────────────────────────┼────────┼──────────────────────────────┤
//	│ GET / HTTP/1.1                │ 200    │ index.html                   │
//	│ GET /capture HTTP/1.1         │ 200    │ JPEG frame from the camera   │
//	│ GET /capture.jpg HTTP/1.1     │ 200    │ JPEG frame from the camera   │
//	│ (capture failed)              │ 503    │ fixed text                   │
//	│ anything else                 │ 404    │ 404.html                     │
//	│ empty, unreadable, > 8 KiB    │ 400    │ fixed text                   │
//	└───────────────────────────────┴────────┴──────────────────────────────┘
//
// Every response has the same shape:
//
//	HTTP/1.1 <code> <reason>\r\n
//	Content-Length: <n>\r\n
//	\r\n
//	<payload>
//
// The pages are embedded; a statics folder may override either of them.
package responder
