package dto

// BackfillReport - итог прогона пересоздания подписанных ссылок
type BackfillReport struct {
	Scanned int  `json:"scanned"`
	Updated int  `json:"updated"`
	Skipped int  `json:"skipped"`
	Failed  int  `json:"failed"`
	DryRun  bool `json:"dry_run"`
}
