package version

const VERSION = "v0.1.0"

const UPDATE_MESSAGE = "Mappings are now read from config.yaml and can be switched remotely with -switch."
