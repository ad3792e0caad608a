package config

type WorkerKeyStruct struct {
	IngestQueue string
}

var WorkerKey = &WorkerKeyStruct{
	IngestQueue: "ingest_tests_queue",
}
