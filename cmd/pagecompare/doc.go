// Command pagecompare aligns the pages of two documents and reports which
// pages match, which were inserted and which were removed.
//
// Subcommands:
//
//	compare <a> <b>    align two documents (directories, manifests or images)
//	history list|show  inspect recorded runs
//	history clear      delete recorded runs
//	config init        write a sample configuration file
//	config validate    load and validate the active configuration
package main
