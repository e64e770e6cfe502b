package entity

import "strconv"

// UploadPrefix is the media prefix holding the uploaded bytes of a record.
func UploadPrefix(id int64) string {
	return "uploads/" + strconv.FormatInt(id, 10)
}

// HistogramPrefix is the media prefix holding the histograms of a record.
func HistogramPrefix(id int64) string {
	return "histograms/" + strconv.FormatInt(id, 10)
}
