package logger

// LogParseSkip logs a feed item that could not be normalized
func LogParseSkip(dynamicID string, err error) {
	GetLogger().WithFields(map[string]interface{}{
		"dynamic_id": dynamicID,
	}).WithError(err).Warn("Skipping unparsable feed item")
}

// LogHarvestSummary logs the outcome of one user's crawl pass
func LogHarvestSummary(user string, fetched, parsed, downloaded, failed int) {
	GetLogger().WithFields(map[string]interface{}{
		"user":       user,
		"fetched":    fetched,
		"parsed":     parsed,
		"downloaded": downloaded,
		"failed":     failed,
	}).Info("Harvest pass completed")
}
