// Package tools implements the callable tools advertised over the protocol:
// search_drivers, list_all_drivers and get_driver_details.
package tools
