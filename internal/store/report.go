package store

// ReportByCompany groups stored jobs by employer name.
func ReportByCompany(jobs []MatchedJob) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, job := range jobs {
		report[job.Company] = append(report[job.Company], map[string]string{
			"id":        job.ID,
			"title":     job.Title,
			"url":       job.JobLink,
			"stored at": job.CreatedAt.Format(timeLayout),
		})
	}
	return report
}
