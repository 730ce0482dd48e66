// Package server exposes the document scanner over two transports: an HTTP
// API for browser clients and an MCP (Model Context Protocol) stdio server.
//
// Both transports decode JSON into the same Service, which adapts requests
// to the scanner package and encodes images as base64 data URLs.
//
// # HTTP
//
// POST /process takes a JSON body with an "action" field:
//   - detect: "image" plus optional tuning fields (threshold1, threshold2,
//     morph_kernel, resize_width, filter_dist, preset, ...). Returns
//     "candidates" and "edge_image".
//   - warp: "image" and "points" (four [x, y] pairs). Returns
//     "processed_image", "ordered_points", "width", "height" and "pose".
//   - select: "candidates" and "point". Returns "index" and "found".
//
// Errors are returned as {"error": "<message>"} with status 200. GET /health
// reports the version and the available contour backends. CORS is open to
// any origin.
//
// # MCP
//
// The stdio server speaks JSON-RPC 2.0, one message per line:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Tools:
//   - detect_documents: candidate page boundaries
//   - warp_document: rectify a quadrilateral, optional pose and OCR
//   - select_candidate: hit-test a point against candidates
//
// MCP tools may read images from local paths and write the rectified page
// to a file; the HTTP transport refuses both.
//
// Tool errors are JSON-RPC error responses with the Go error string as
// data: -32602 for unknown tools, bad arguments or bad geometry, -32000 for
// everything else. Lines that are not JSON get -32700 with a null ID.
package server
