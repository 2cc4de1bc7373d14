// Package connectivity gates a maintenance run on network reachability.
package connectivity
