// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package units formats byte counts and bitrates for the reporter,
// kept deliberately small.
package units

import "fmt"

// Format renders bytes according to the -f unit letter: k/K (bits/bytes
// per 1000), m/M (per 1e6), g/G (per 1e9), a/A (adaptive, bytes).
// Lowercase letters are bits/s, uppercase are bytes/s (the iperf3
// convention); "a"/"A" picks the largest unit that keeps the number
// above 1.
func Format(bytes int64, format byte) string {
	switch format {
	case 'k':
		return fmt.Sprintf("%.2f Kbits/sec", float64(bytes)*8/1e3)
	case 'K':
		return fmt.Sprintf("%.2f KBytes/sec", float64(bytes)/1e3)
	case 'm':
		return fmt.Sprintf("%.2f Mbits/sec", float64(bytes)*8/1e6)
	case 'M':
		return fmt.Sprintf("%.2f MBytes/sec", float64(bytes)/1e6)
	case 'g':
		return fmt.Sprintf("%.2f Gbits/sec", float64(bytes)*8/1e9)
	case 'G':
		return fmt.Sprintf("%.2f GBytes/sec", float64(bytes)/1e9)
	case 'a', 'A':
		return formatAdaptive(bytes)
	default:
		return formatAdaptive(bytes)
	}
}

func formatAdaptive(bytes int64) string {
	b := float64(bytes)
	switch {
	case b >= 1e9:
		return fmt.Sprintf("%.2f GBytes", b/1e9)
	case b >= 1e6:
		return fmt.Sprintf("%.2f MBytes", b/1e6)
	case b >= 1e3:
		return fmt.Sprintf("%.2f KBytes", b/1e3)
	default:
		return fmt.Sprintf("%d Bytes", bytes)
	}
}

// ValidFormat reports whether c is one of the accepted -f letters.
func ValidFormat(c byte) bool {
	switch c {
	case 'k', 'K', 'm', 'M', 'g', 'G', 'a', 'A':
		return true
	default:
		return false
	}
}
