package pipeline

import "strconv"

const TopicCustomerEvents = "pipeline.customer.events"

// PartitionKey keeps all events of one customer on one partition.
func PartitionKey(customerID int) []byte { return []byte(strconv.Itoa(customerID)) }
