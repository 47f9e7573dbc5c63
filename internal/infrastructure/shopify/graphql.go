package shopify

const webhookSubscriptionCreateMutation = `
mutation webhookSubscriptionCreate($topic: WebhookSubscriptionTopic!, $webhookSubscription: WebhookSubscriptionInput!) {
  webhookSubscriptionCreate(topic: $topic, webhookSubscription: $webhookSubscription) {
    webhookSubscription { id }
    userErrors { field message }
  }
}`

const fulfillmentOrdersQuery = `
query orderFulfillmentOrders($id: ID!) {
  order(id: $id) {
    fulfillmentOrders(first: 10) {
      nodes { id status }
    }
  }
}`

const fulfillmentCreateMutation = `
mutation fulfillmentCreate($fulfillment: FulfillmentInput!) {
  fulfillmentCreate(fulfillment: $fulfillment) {
    fulfillment { id status }
    userErrors { field message }
  }
}`

type webhookSubscriptionCreateResponse struct {
	WebhookSubscriptionCreate struct {
		WebhookSubscription *struct {
			ID string `json:"id"`
		} `json:"webhookSubscription"`
		UserErrors []userErrorNode `json:"userErrors"`
	} `json:"webhookSubscriptionCreate"`
}

type fulfillmentOrdersResponse struct {
	Order *struct {
		FulfillmentOrders struct {
			Nodes []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"nodes"`
		} `json:"fulfillmentOrders"`
	} `json:"order"`
}

type fulfillmentCreateResponse struct {
	FulfillmentCreate struct {
		Fulfillment *struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"fulfillment"`
		UserErrors []userErrorNode `json:"userErrors"`
	} `json:"fulfillmentCreate"`
}

type userErrorNode struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}
