// Package files locates input tables on disk.
//
// A configured input such as store_data.csv may be delivered as
// store_data.xlsx; ResolveTable finds the file with the same stem and a
// supported extension so the loader can pick the matching reader.
//
//	discovery := files.NewDiscovery(inputDir)
//	path := discovery.ResolveTable("store_data.csv")
package files
