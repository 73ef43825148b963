// Package server implements the MCP (Model Context Protocol) server for the
// OCR field tools.
//
// This package provides a JSON-RPC 2.0 server that exposes transform, OCR and
// field-scoring operations through the MCP protocol, so an assistant can try
// preprocessing paths on a capture and see which one reads best.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Images:
//   - image_load: Load image and get metadata
//   - image_transform: Apply transform steps and return the result as PNG
//   - transforms_list: Names usable as steps
//
// OCR and scoring:
//   - ocr_recognize: Recognize an image as-is and score it
//   - ocr_run_path: Transform, recognize and score one path
//   - ocr_run_field: Rank every path of one field
//   - ocr_run_fields: Run a whole fields file, chaining winners
//
// Tools that take an image accept a path and an optional region. Without a
// path the screen is captured, if the server was started with a capturer.
//
// # Image Caching
//
// Loaded files are cached by path for the lifetime of the server process and
// shared by all tool calls; transforms never modify a cached image.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A path that fails is not a tool error: it is reported in the result with
// status false and an error string.
//
// Logs go to the configured logger, never to stdout.
package server
