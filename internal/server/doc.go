// Package server implements the MCP (Model Context Protocol) server for emoji
// art conversion.
//
// This package provides a JSON-RPC 2.0 server that exposes the color matching
// engine through the MCP protocol, so an MCP client can load palettes, match
// colors and convert images into emoji grids.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Palette:
//   - emoji_load_palette: Load a CSV palette, falling back to the built-in one
//   - emoji_palette_info: Describe the active palette
//
// Matching:
//   - emoji_match_color: Nearest emoji for an RGB or hex color
//   - emoji_sample_cell: Average color of an image rectangle and its emoji
//
// Conversion:
//   - emoji_convert_image: Render an image as an emoji grid
//
// Cache:
//   - emoji_clear_cache: Drop cached matches and images
//   - emoji_cache_stats: Hit, miss and size counters
//
// # Progress
//
// When a tools/call request carries params._meta.progressToken, conversions
// emit notifications/progress messages with progress from 0 to 100 as rows
// are rendered.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// An unusable palette is not an error: the engine switches to its fallback
// palette and emoji_load_palette reports why.
package server
