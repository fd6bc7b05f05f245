// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package record owns the on-store form of a poll: its derived address,
// its binary encoding, and the size limits every record must respect.
package record
