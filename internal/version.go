package internal

// Version is stamped into compile catalogs and the CLI version output.
const Version = "0.1.0"
